package binance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/alphadrop/airdrop-monitor/domain"
	"github.com/pkg/errors"
)

// Client fetches the alpha airdrop catalog and per-token metadata from
// the public binance wallet APIs.
type Client struct {
	catalogURL   string
	tokenInfoURL string
	pageSize     int
	httpClient   *http.Client
}

func NewClient(catalogURL, tokenInfoURL string, pageSize int, timeout time.Duration) *Client {
	return &Client{
		catalogURL:   catalogURL,
		tokenInfoURL: tokenInfoURL,
		pageSize:     pageSize,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

type catalogResponse struct {
	Data struct {
		Configs []domain.Airdrop `json:"configs"`
	} `json:"data"`
}

type tokenInfoResponse struct {
	Data struct {
		MetaInfo *struct {
			IconURL       string `json:"iconUrl"`
			CnDescription string `json:"cnDescription"`
			EnDescription string `json:"enDescription"`
		} `json:"metaInfo"`
		PriceInfo *struct {
			Price string `json:"price"`
		} `json:"priceInfo"`
	} `json:"data"`
}

// GetAirdrops returns the current airdrop catalog. Any transport,
// status or decode problem fails the whole call, as does a catalog
// entry without key or claim end time.
func (c *Client) GetAirdrops(ctx context.Context) ([]domain.Airdrop, error) {
	requestBody := fmt.Sprintf(`{"page":1,"rows":%d}`, c.pageSize)
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.catalogURL, bytes.NewBufferString(requestBody))
	if err != nil {
		return nil, errors.Wrap(err, "creating catalog request")
	}
	request.Header.Set("Content-Type", "application/json")

	body, err := c.do(request)
	if err != nil {
		return nil, errors.Wrap(err, "calling catalog api")
	}

	var response catalogResponse
	err = json.Unmarshal(body, &response)
	if err != nil {
		return nil, errors.Wrap(err, "decoding catalog response")
	}

	for _, airdrop := range response.Data.Configs {
		if airdrop.ContractAddress == "" {
			return nil, errors.New("catalog entry without contract address")
		}
		if airdrop.ClaimEndTime <= 0 {
			return nil, errors.Errorf("catalog entry [%s] without claim end time", airdrop.ContractAddress)
		}
	}

	return response.Data.Configs, nil
}

// GetTokenInfo returns the enrichment data for one token.
func (c *Client) GetTokenInfo(ctx context.Context, chainID, contractAddress string) (*domain.TokenInfo, error) {
	query := url.Values{}
	query.Set("chainId", chainID)
	query.Set("contractAddress", contractAddress)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.tokenInfoURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating token info request")
	}

	body, err := c.do(request)
	if err != nil {
		return nil, errors.Wrapf(err, "calling token info api for [%s]", contractAddress)
	}

	var response tokenInfoResponse
	err = json.Unmarshal(body, &response)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding token info response for [%s]", contractAddress)
	}
	if response.Data.MetaInfo == nil {
		return nil, errors.Errorf("token info response for [%s] without meta info", contractAddress)
	}

	description := response.Data.MetaInfo.EnDescription
	if description == "" {
		description = response.Data.MetaInfo.CnDescription
	}
	info := domain.TokenInfo{
		IconURL:     response.Data.MetaInfo.IconURL,
		Description: description,
	}
	if response.Data.PriceInfo != nil {
		info.Price = response.Data.PriceInfo.Price
	}

	return &info, nil
}

func (c *Client) do(request *http.Request) ([]byte, error) {
	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer func() {
		err := response.Body.Close()
		if err != nil {
			log.Printf("[ERROR] closing response body: %v", err)
		}
	}()

	if response.StatusCode != http.StatusOK {
		return nil, errors.Errorf("unexpected response status [%d]", response.StatusCode)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading response body")
	}
	return body, nil
}
