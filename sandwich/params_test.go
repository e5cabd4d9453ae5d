package sandwich

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/wtf-protocol/helpers/commitment"
	"github.com/wtf-protocol/helpers/jwt"
	"github.com/wtf-protocol/helpers/locator"
)

const (
	testHeader  = `{"alg":"RS256","kid":"1234567890","typ":"JWT"}`
	testPayload = `{"iss":"https://accounts.google.com","aud":"wtf.example","sub":"113282815992720230663","email":"alice@example.com","exp":1744396626}`
)

var testSignature = []byte{0xde, 0xad, 0xbe, 0xef}

type fakeSource struct {
	bread    map[ClaimKind]Bread
	audience []byte
	breadErr error
	audErr   error
}

func (s *fakeSource) Bread(_ context.Context, kind ClaimKind) (Bread, error) {
	if err := CheckBreadKind(kind); err != nil {
		return Bread{}, err
	}
	if s.breadErr != nil {
		return Bread{}, s.breadErr
	}
	return s.bread[kind], nil
}

func (s *fakeSource) Audience(_ context.Context) ([]byte, error) {
	if s.audErr != nil {
		return nil, s.audErr
	}
	return s.audience, nil
}

func newSource() *fakeSource {
	return &fakeSource{
		bread: map[ClaimKind]Bread{
			ClaimID:     {Bottom: []byte(`"sub":"`), Top: []byte(`",`)},
			ClaimExpiry: {Bottom: []byte(`,"exp":`), Top: []byte(`}`)},
		},
		audience: []byte(`"aud":"wtf.example"`),
	}
}

func testToken() (raw, header, payload string) {
	header = base64.RawURLEncoding.EncodeToString([]byte(testHeader))
	payload = base64.RawURLEncoding.EncodeToString([]byte(testPayload))
	sig := base64.RawURLEncoding.EncodeToString(testSignature)
	return header + "." + payload + "." + sig, header, payload
}

func requireLocated(t *testing.T, s Sandwich, expected string) {
	t.Helper()

	require.NoError(t, s.Err)
	require.True(t, s.Found())
	require.Equal(t, []byte(expected), s.Value)

	start := strings.Index(testPayload, expected)
	require.Equal(t, locator.Range{Start: start, End: start + len(expected)}, *s.Range)
	require.Equal(t, expected, testPayload[s.Range.Start:s.Range.End])
}

func TestBuildVerificationParams(t *testing.T) {
	raw, header, payload := testToken()

	params, err := BuildVerificationParams(context.Background(), raw, newSource(), Options{})
	require.NoError(t, err)

	require.Equal(t, "113282815992720230663", params.ID)
	require.Equal(t, int64(1744396626), params.ExpirationTimestamp)
	require.Equal(t, "1744396626", params.ExpirationTime)
	require.Equal(t, new(big.Int).SetBytes(testSignature), params.Signature)
	require.Equal(t, header+"."+payload, params.Message)
	require.Equal(t, commitment.SHA256Hex(header+"."+payload), params.HashedMessage)
	require.Equal(t, len(header)+1, params.PayloadByteOffset)
	require.Equal(t, payload, params.Message[params.PayloadByteOffset:])

	requireLocated(t, params.IDSandwich, `"sub":"113282815992720230663",`)
	requireLocated(t, params.ExpSandwich, `,"exp":1744396626}`)
	requireLocated(t, params.AudSandwich, `"aud":"wtf.example"`)

	require.Equal(t, ClaimID, params.IDSandwich.Claim)
	require.Equal(t, ClaimExpiry, params.ExpSandwich.Claim)
	require.Equal(t, ClaimAudience, params.AudSandwich.Claim)

	require.Len(t, params.VerifyMeArgs(), 6)
	require.Equal(t, params.Signature, params.VerifyMeArgs()[0])
	require.Equal(t, []byte(testPayload), params.Token().Payload.Decoded)

	pair, err := params.Commitments("0xC8834C1FcF0Df6623Fc8C8eD25064A4148D99388")
	require.NoError(t, err)
	expected, err := commitment.Generate("0xC8834C1FcF0Df6623Fc8C8eD25064A4148D99388", []byte(params.Message))
	require.NoError(t, err)
	require.Equal(t, expected, pair)
}

func TestBuildVerificationParamsIDField(t *testing.T) {
	raw, _, _ := testToken()
	source := newSource()
	source.bread[ClaimID] = Bread{Bottom: []byte(`"email":"`), Top: []byte(`",`)}

	params, err := BuildVerificationParams(context.Background(), "id_token="+raw+"&state=1", source, Options{IDField: "email"})
	require.NoError(t, err)

	require.Equal(t, "alice@example.com", params.ID)
	requireLocated(t, params.IDSandwich, `"email":"alice@example.com",`)
}

func TestBuildVerificationParamsWrongBread(t *testing.T) {
	raw, _, _ := testToken()
	source := newSource()
	source.bread[ClaimID] = Bread{Bottom: []byte(`"sub":"`), Top: []byte(`"}`)}

	var logs bytes.Buffer
	ctx := zerolog.New(&logs).WithContext(context.Background())

	params, err := BuildVerificationParams(ctx, raw, source, Options{})
	require.NotNil(t, params)

	var claimErr *ClaimError
	require.True(t, errors.As(err, &claimErr))
	require.Equal(t, ClaimID, claimErr.Claim)

	var notFound *locator.NotFoundError
	require.True(t, errors.As(err, &notFound))

	require.False(t, params.IDSandwich.Found())
	require.Nil(t, params.IDSandwich.Range)
	require.Equal(t, []byte(`"sub":"113282815992720230663"}`), params.IDSandwich.Value)

	// The other claims are unaffected.
	requireLocated(t, params.ExpSandwich, `,"exp":1744396626}`)
	requireLocated(t, params.AudSandwich, `"aud":"wtf.example"`)

	require.Contains(t, logs.String(), "failed to sandwich claim")
	require.Contains(t, logs.String(), `"claim":"id"`)
}

func TestBuildVerificationParamsSourceFailure(t *testing.T) {
	raw, _, _ := testToken()
	source := newSource()
	source.audErr = errors.New("rpc unavailable")

	params, err := BuildVerificationParams(context.Background(), raw, source, Options{})
	require.ErrorContains(t, err, "rpc unavailable")

	require.False(t, params.AudSandwich.Found())
	require.True(t, params.IDSandwich.Found())
	require.True(t, params.ExpSandwich.Found())
}

func TestBuildVerificationParamsEmptyMarkers(t *testing.T) {
	raw, _, _ := testToken()
	source := newSource()
	source.audience = []byte{}

	params, err := BuildVerificationParams(context.Background(), raw, source, Options{})
	require.ErrorIs(t, err, ErrEmptySandwich)

	var claimErr *ClaimError
	require.True(t, errors.As(err, &claimErr))
	require.Equal(t, ClaimAudience, claimErr.Claim)

	require.False(t, params.AudSandwich.Found())
	require.Nil(t, params.AudSandwich.Range)
	require.True(t, params.IDSandwich.Found())
	require.True(t, params.ExpSandwich.Found())
}

func TestLocateEmptySandwich(t *testing.T) {
	_, _, payload := testToken()

	s := Locate(ClaimID, Build("", nil, nil).Bytes, payload)
	require.False(t, s.Found())
	require.ErrorIs(t, s.Err, ErrEmptySandwich)
}

func TestBuildVerificationParamsMissingClaims(t *testing.T) {
	raw, _, _ := testToken()

	params, err := BuildVerificationParams(context.Background(), raw, newSource(), Options{IDField: "nickname", ExpirationField: "iss"})
	require.Error(t, err)

	var claimErr *ClaimError
	require.True(t, errors.As(err, &claimErr))

	require.False(t, params.IDSandwich.Found())
	require.ErrorContains(t, params.IDSandwich.Err, `claim "nickname" missing from payload`)
	require.False(t, params.ExpSandwich.Found())
	require.ErrorContains(t, params.ExpSandwich.Err, `claim "iss"`)
	require.True(t, params.AudSandwich.Found())
}

func TestBuildVerificationParamsBadToken(t *testing.T) {
	params, err := BuildVerificationParams(context.Background(), "not-a-jwt", newSource(), Options{})
	require.Nil(t, params)

	var decompositionErr *jwt.DecompositionError
	require.True(t, errors.As(err, &decompositionErr))
}
