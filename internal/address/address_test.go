package address

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerive_Deterministic(t *testing.T) {
	t.Parallel()

	seeds := [][]byte{Seed("marketplace"), Seed("platform")}

	a1, p1, err := Derive(MarketplaceProgram, seeds...)
	require.NoError(t, err)
	a2, p2, err := Derive(MarketplaceProgram, seeds...)
	require.NoError(t, err)

	assert.Equal(t, a1, a2)
	assert.Equal(t, p1, p2)
	assert.False(t, a1.OnCurve(), "derived address must be off-curve")
}

func TestDerive_ProofIsSmallestOffCurveNonce(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"a", "platform", "folio", "treasury", "x-very-long-marketplace-name-32b"} {
		addr, proof, err := Derive(PlatformProgram, Seed("marketplace"), Seed(name))
		require.NoError(t, err)

		for n := 0; n < int(proof); n++ {
			_, err := CreateWithProof(PlatformProgram, uint8(n), Seed("marketplace"), Seed(name))
			assert.ErrorIs(t, err, ErrOnCurve, "nonce %d below proof %d must be on-curve", n, proof)
		}
		assert.True(t, Verify(PlatformProgram, addr, proof, Seed("marketplace"), Seed(name)))
		assert.True(t, IsCanonical(PlatformProgram, addr, proof, Seed("marketplace"), Seed(name)))
	}
}

func TestDerive_DistinctInputsDoNotCollide(t *testing.T) {
	t.Parallel()

	wallet := Address{7}
	a, _ := MustDerive(PlatformProgram, Seed("writer"), wallet.Bytes())
	b, _ := MustDerive(PlatformProgram, Seed("reader"), wallet.Bytes())
	c, _ := MustDerive(MinterProgram, Seed("writer"), wallet.Bytes())

	assert.NotEqual(t, a, b, "distinct tags must not collide")
	assert.NotEqual(t, a, c, "distinct programs must not collide")
}

func TestVerify_RejectsWrongInputs(t *testing.T) {
	t.Parallel()

	addr, proof := MustDerive(PlatformProgram, Seed("book"), Address{1}.Bytes())

	assert.False(t, Verify(PlatformProgram, addr, proof, Seed("book"), Address{2}.Bytes()))
	assert.False(t, Verify(MinterProgram, addr, proof, Seed("book"), Address{1}.Bytes()))
	assert.False(t, Verify(PlatformProgram, addr, proof+1, Seed("book"), Address{1}.Bytes()))
}

func TestDerive_SeedLimits(t *testing.T) {
	t.Parallel()

	_, _, err := Derive(PlatformProgram, bytes.Repeat([]byte{1}, MaxSeedLen+1))
	assert.ErrorIs(t, err, ErrSeedTooLong)

	many := make([][]byte, MaxSeeds+1)
	for i := range many {
		many[i] = []byte{byte(i)}
	}
	_, _, err = Derive(PlatformProgram, many...)
	assert.ErrorIs(t, err, ErrTooManySeeds)
}

func TestWalletAddress_IsOnCurve(t *testing.T) {
	t.Parallel()

	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	wallet, err := FromPublicKey(pub)
	require.NoError(t, err)
	assert.True(t, wallet.OnCurve(), "ed25519 public keys decode as curve points")
}

func TestParse(t *testing.T) {
	t.Parallel()

	addr, _ := MustDerive(PlatformProgram, Seed("platform"))

	parsed, err := Parse(addr.String())
	require.NoError(t, err)
	assert.Equal(t, addr, parsed)

	_, err = Parse("0OIl")
	assert.Error(t, err, "base58 alphabet excludes 0, O, I and l")

	_, err = Parse("3mJr7AoUXx2Wqd")
	assert.True(t, errors.Is(err, ErrInvalidLength))
}

func TestAddress_JSON(t *testing.T) {
	t.Parallel()

	type payload struct {
		Owner Address `json:"owner"`
	}
	in := payload{Owner: MarketplaceProgram}

	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(raw), MarketplaceProgram.String())

	var out payload
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)
}

func TestProgramName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "minter", ProgramName(MinterProgram))
	assert.Equal(t, "", ProgramName(Address{9}))
}
