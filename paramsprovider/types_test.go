package paramsprovider

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAPIResponseLatestPicksHighestVersion(t *testing.T) {
	resp := &apiResponse{}
	resp.Data.Params.BBN = []VersionedParams{
		{Version: 1}, {Version: 3}, {Version: 2},
	}

	latest := resp.latest()
	require.NotNil(t, latest)
	require.Equal(t, 3, latest.Version)
}

func TestAPIResponseLatestEmpty(t *testing.T) {
	resp := &apiResponse{}
	require.Nil(t, resp.latest())
}

func TestParseXOnlyPubKeyAcceptsBothEncodings(t *testing.T) {
	xonly := "79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"
	compressed := "02" + xonly

	fromXOnly, err := parseXOnlyPubKey(xonly)
	require.NoError(t, err)
	require.Len(t, fromXOnly, 32)

	fromCompressed, err := parseXOnlyPubKey(compressed)
	require.NoError(t, err)
	require.Equal(t, fromXOnly, fromCompressed)
}

func TestParseXOnlyPubKeyRejectsBadLength(t *testing.T) {
	_, err := parseXOnlyPubKey("abcd")
	require.ErrorIs(t, err, ErrInvalidPubKeyHex)
}

func TestVersionedParamsCovenantKeys(t *testing.T) {
	p := &VersionedParams{
		CovenantPks: []string{
			"79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798",
		},
	}

	keys, err := p.CovenantKeys()
	require.NoError(t, err)
	require.Len(t, keys, 1)
	require.Len(t, keys[0], 32)
}
