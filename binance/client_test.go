package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogPayload = `{
  "code": "000000",
  "data": {
    "configs": [
      {
        "configId": "1",
        "configName": "ABC Airdrop",
        "contractAddress": "0xabc",
        "binanceChainId": "56",
        "tokenSymbol": "ABC",
        "airdropAmount": 100.5,
        "claimStartTime": 1700000000000,
        "claimEndTime": 1700003600000,
        "status": "ongoing"
      }
    ]
  }
}`

func TestClient_GetAirdrops(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, err := w.Write([]byte(catalogPayload))
		require.NoError(t, err)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.URL, 20, time.Second)
	airdrops, err := client.GetAirdrops(context.Background())
	require.NoError(t, err)
	require.Len(t, airdrops, 1)
	assert.Equal(t, "0xabc", airdrops[0].ContractAddress)
	assert.Equal(t, "56", airdrops[0].ChainID)
	assert.Equal(t, "ABC", airdrops[0].TokenSymbol)
	assert.Equal(t, int64(1700003600000), airdrops[0].ClaimEndTime)
}

func TestClient_GetAirdrops_givenMissingClaimEndTime_thenError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, err := w.Write([]byte(`{"data":{"configs":[{"contractAddress":"0xabc"}]}}`))
		require.NoError(t, err)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.URL, 20, time.Second)
	_, err := client.GetAirdrops(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without claim end time")
}

func TestClient_GetAirdrops_givenErrorStatus_thenError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.URL, 20, time.Second)
	_, err := client.GetAirdrops(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected response status [502]")
}

func TestClient_GetAirdrops_givenMalformedPayload_thenError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, err := w.Write([]byte(`not json`))
		require.NoError(t, err)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.URL, 20, time.Second)
	_, err := client.GetAirdrops(context.Background())
	require.Error(t, err)
}

func TestClient_GetTokenInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "56", r.URL.Query().Get("chainId"))
		assert.Equal(t, "0xabc", r.URL.Query().Get("contractAddress"))
		payload := `{"data":{"metaInfo":{"iconUrl":"https://icons/abc.png","cnDescription":"甲","enDescription":"ABC token"},"priceInfo":{"price":"1.23"}}}`
		_, err := w.Write([]byte(payload))
		require.NoError(t, err)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.URL, 20, time.Second)
	info, err := client.GetTokenInfo(context.Background(), "56", "0xabc")
	require.NoError(t, err)
	assert.Equal(t, "ABC token", info.Description)
	assert.Equal(t, "1.23", info.Price)
	assert.Equal(t, "https://icons/abc.png", info.IconURL)
}

func TestClient_GetTokenInfo_givenMissingMetaInfo_thenError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, err := w.Write([]byte(`{"data":{}}`))
		require.NoError(t, err)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.URL, 20, time.Second)
	_, err := client.GetTokenInfo(context.Background(), "56", "0xabc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without meta info")
}
