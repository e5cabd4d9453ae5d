package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wtf-protocol/helpers/commitment"
	"github.com/wtf-protocol/helpers/locator"
	"github.com/wtf-protocol/helpers/markers"
)

const testPayload = `{"aud":"wtf.example","sub":"abc","exp":1700000000}`

func testJwt() string {
	enc := base64.RawURLEncoding
	return enc.EncodeToString([]byte(`{"alg":"RS256","typ":"JWT"}`)) + "." +
		enc.EncodeToString([]byte(testPayload)) + "." +
		enc.EncodeToString([]byte{0x01, 0x02})
}

func hexOf(s string) string { return "0x" + hex.EncodeToString([]byte(s)) }

func post(t *testing.T, handler http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()

	b, err := json.Marshal(body)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(b)))
	return rec
}

func TestHandleCommitmentsRequest(t *testing.T) {
	rec := post(t, HandleCommitmentsRequest, CommitmentsRequest{Address: "0x01", Message: "hello"})
	require.Equal(t, http.StatusOK, rec.Code)

	var pair commitment.Pair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))

	expected, err := commitment.Generate("0x01", []byte("hello"))
	require.NoError(t, err)
	require.Equal(t, expected, pair)

	rec = post(t, HandleCommitmentsRequest, CommitmentsRequest{Address: "0xzz", Message: "hello"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, HandleCommitmentsRequest, CommitmentsRequest{Address: "0x01", Message: "hello", Scheme: "md5"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleLocateRequest(t *testing.T) {
	encoded := base64.RawURLEncoding.EncodeToString([]byte(testPayload))

	rec := post(t, HandleLocateRequest, LocateRequest{PlaintextHex: hexOf(`"sub":"abc"`), Encoded: encoded})
	require.Equal(t, http.StatusOK, rec.Code)

	var r locator.Range
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	require.Equal(t, locator.Range{Start: 21, End: 32}, r)

	rec = post(t, HandleLocateRequest, LocateRequest{PlaintextHex: hexOf(`"sub":"abd"`), Encoded: encoded})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = post(t, HandleLocateRequest, LocateRequest{PlaintextHex: "00", Encoded: encoded, Alphabet: "hex"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleParamsRequest(t *testing.T) {
	SetMarkerSource(&markers.Static{
		BottomBread:    hexOf(`"sub":"`),
		TopBread:       hexOf(`",`),
		ExpBottomBread: hexOf(`"exp":`),
		ExpTopBread:    hexOf(`}`),
		Aud:            hexOf(`"aud":"other.example"`),
	})
	defer SetMarkerSource(nil)

	rec := post(t, HandleParamsRequest, ParamsRequest{Jwt: testJwt()})
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.JSONEq(t, `"abc"`, string(body["id"]))

	var id, aud map[string]any
	require.NoError(t, json.Unmarshal(body["proposedIDSandwich"], &id))
	require.NoError(t, json.Unmarshal(body["proposedAud"], &aud))
	require.Equal(t, float64(21), id["idxStart"])
	require.Nil(t, aud["idxStart"])
	require.NotEmpty(t, aud["error"])

	rec = post(t, HandleParamsRequest, ParamsRequest{Jwt: "a.b"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleParamsRequestUnconfigured(t *testing.T) {
	rec := post(t, HandleParamsRequest, ParamsRequest{Jwt: testJwt()})
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleProofRequestUnconfigured(t *testing.T) {
	rec := post(t, HandleProofRequest, ProofRequest{ParamsRequest: ParamsRequest{Jwt: testJwt()}})
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	for _, handler := range []http.HandlerFunc{
		HandleCommitmentsRequest,
		HandleLocateRequest,
		HandleParamsRequest,
		HandleProofRequest,
	} {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	}
}
