package wire

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthTokenGolden(t *testing.T) {
	tests := []struct {
		name      string
		password  string
		salt      string
		challenge string
		want      string
	}{
		{"change_me", "change_me", "S", "C", "YqhR0ptchaDVIVPh/6qu9V6GgTV7ITda3P02u+4eaiE="},
		{"realistic", "supersecret", "PZVbYpvAnZut2SS6JNJytDm9", "ztTBnnuqrqaKDzRM3xcVdbYm", "8feeOF01ujNBiQFBqMMiEb6/yB/tJDZyX2sosCp5zLU="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AuthToken(tt.password, tt.salt, tt.challenge))
		})
	}
}

func TestAuthTokenTwoStage(t *testing.T) {
	// Rebuild the token step by step to pin the intermediate encoding.
	first := sha256.Sum256([]byte("change_me" + "S"))
	firstB64 := base64.StdEncoding.EncodeToString(first[:])
	assert.Equal(t, "FYIQFNQi85X/JPZSSNxmym4TTYgZJCrNC70wsuniBUU=", firstB64)

	second := sha256.Sum256([]byte(firstB64 + "C"))
	assert.Equal(t, base64.StdEncoding.EncodeToString(second[:]), AuthToken("change_me", "S", "C"))
}

func TestAuthTokenDeterministic(t *testing.T) {
	a := AuthToken("pw", "salt", "challenge")
	b := AuthToken("pw", "salt", "challenge")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, AuthToken("pw", "salt", "other"))
}

func TestOpCodeString(t *testing.T) {
	tests := []struct {
		op   OpCode
		want string
	}{
		{OpHello, "HELLO"},
		{OpIdentify, "IDENTIFY"},
		{OpIdentified, "IDENTIFIED"},
		{OpEvent, "EVENT"},
		{OpRequest, "REQUEST"},
		{OpRequestResponse, "REQUEST_RESPONSE"},
		{OpCode(4), "UNKNOWN"},
		{OpCode(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.op.String())
	}
	assert.False(t, OpCode(4).IsValid())
	assert.True(t, OpRequestBatchResponse.IsValid())
}

func TestStatusCodeString(t *testing.T) {
	assert.Equal(t, "SUCCESS", StatusSuccess.String())
	assert.Equal(t, "RESOURCE_NOT_FOUND", StatusResourceNotFound.String())
	assert.Equal(t, "STATUS_999", StatusCode(999).String())
}

func TestDecodeHello(t *testing.T) {
	t.Run("WithAuthentication", func(t *testing.T) {
		data := []byte(`{"op":0,"d":{"obsWebSocketVersion":"5.1.0","rpcVersion":1,"authentication":{"challenge":"C","salt":"S"}}}`)

		f, err := DecodeFrame(data)
		require.NoError(t, err)
		assert.Equal(t, OpHello, f.Op)

		h, err := DecodeHello(f)
		require.NoError(t, err)
		assert.Equal(t, "5.1.0", h.ObsWebSocketVersion)
		assert.Equal(t, 1, h.RPCVersion)
		require.NotNil(t, h.Authentication)
		assert.Equal(t, "C", h.Authentication.Challenge)
		assert.Equal(t, "S", h.Authentication.Salt)
	})

	t.Run("WithoutAuthentication", func(t *testing.T) {
		f, err := DecodeFrame([]byte(`{"op":0,"d":{"rpcVersion":1}}`))
		require.NoError(t, err)

		h, err := DecodeHello(f)
		require.NoError(t, err)
		assert.Nil(t, h.Authentication)
	})

	t.Run("MissingPayload", func(t *testing.T) {
		f, err := DecodeFrame([]byte(`{"op":0}`))
		require.NoError(t, err)

		_, err = DecodeHello(f)
		assert.Error(t, err)
	})
}

func TestDecodeFrameInvalidJSON(t *testing.T) {
	_, err := DecodeFrame([]byte(`{"op":`))
	assert.Error(t, err)
}

func TestEncodeIdentifyOmitsEmptyAuthentication(t *testing.T) {
	data, err := EncodeIdentify(&Identify{RPCVersion: 1})
	require.NoError(t, err)

	var raw struct {
		Op int                        `json:"op"`
		D  map[string]json.RawMessage `json:"d"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Equal(t, 1, raw.Op)
	assert.NotContains(t, raw.D, "authentication")
	assert.Contains(t, raw.D, "eventSubscriptions")
	assert.JSONEq(t, `1`, string(raw.D["rpcVersion"]))
}

func TestEncodeRequestSetInputSettings(t *testing.T) {
	data, err := EncodeRequest(&Request{
		RequestType: RequestSetInputSettings,
		RequestID:   "req-1",
		RequestData: SetInputSettingsData{
			InputName:     "Subtitle",
			InputSettings: TextInputSettings{Text: "hello"},
			Overlay:       true,
		},
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"op": 6,
		"d": {
			"requestType": "SetInputSettings",
			"requestId": "req-1",
			"requestData": {
				"inputName": "Subtitle",
				"inputSettings": {"text": "hello"},
				"overlay": true
			}
		}
	}`, string(data))
}

func TestEncodeRequestValidation(t *testing.T) {
	_, err := EncodeRequest(&Request{RequestType: RequestSetInputSettings})
	assert.Error(t, err)

	_, err = EncodeRequest(&Request{RequestID: "req-1"})
	assert.Error(t, err)
}

func TestDecodeRequestResponse(t *testing.T) {
	data := []byte(`{"op":7,"d":{"requestType":"SetInputSettings","requestId":"req-3","requestStatus":{"result":false,"code":600,"comment":"No source was found"}}}`)

	f, err := DecodeFrame(data)
	require.NoError(t, err)
	assert.Equal(t, OpRequestResponse, f.Op)

	resp, err := DecodeRequestResponse(f)
	require.NoError(t, err)
	assert.Equal(t, "req-3", resp.RequestID)
	assert.False(t, resp.IsSuccess())
	assert.Equal(t, StatusResourceNotFound, resp.RequestStatus.Code)
	assert.Equal(t, "No source was found", resp.RequestStatus.Comment)
}
