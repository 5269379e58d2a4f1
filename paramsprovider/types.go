package paramsprovider

import "fmt"

// VersionedParams is a single version of the network's staking parameters,
// as published by a Babylon-style parameters API.
type VersionedParams struct {
	Version              int      `json:"version"`
	CovenantPks          []string `json:"covenant_pks"`
	CovenantQuorum       uint32   `json:"covenant_quorum"`
	MinStakingValueSat   int64    `json:"min_staking_value_sat"`
	MaxStakingValueSat   int64    `json:"max_staking_value_sat"`
	MinStakingTimeBlocks uint32   `json:"min_staking_time_blocks"`
	MaxStakingTimeBlocks uint32   `json:"max_staking_time_blocks"`
	UnbondingTimeBlocks  uint32   `json:"unbonding_time_blocks"`
}

// apiResponse is the envelope the network-info endpoint wraps its versioned
// parameter list in.
type apiResponse struct {
	Data struct {
		Params struct {
			BBN []VersionedParams `json:"bbn"`
		} `json:"params"`
	} `json:"data"`
}

// latest returns the highest-versioned entry, or nil if the response
// carried no parameter versions.
func (r *apiResponse) latest() *VersionedParams {
	if len(r.Data.Params.BBN) == 0 {
		return nil
	}

	latest := &r.Data.Params.BBN[0]
	for i := range r.Data.Params.BBN {
		if r.Data.Params.BBN[i].Version > latest.Version {
			latest = &r.Data.Params.BBN[i]
		}
	}
	return latest
}

// CovenantKeys decodes CovenantPks into 32-byte x-only public keys,
// accepting both compressed (33-byte) and x-only (32-byte) hex encodings.
func (p *VersionedParams) CovenantKeys() ([][]byte, error) {
	keys := make([][]byte, len(p.CovenantPks))
	for i, hexKey := range p.CovenantPks {
		key, err := parseXOnlyPubKey(hexKey)
		if err != nil {
			return nil, fmt.Errorf("covenant key %d: %w", i, err)
		}
		keys[i] = key
	}
	return keys, nil
}
