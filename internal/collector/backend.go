package collector

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"TradeReplay/internal/model"
)

// ErrBackend is wrapped by errors the model service reports in its payload.
var ErrBackend = errors.New("backend error")

// BackendClient talks to the model service that fetches prices, trains the
// model and serves predictions. It implements PriceFetcher, Predictor and
// Trainer.
type BackendClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewBackendClient creates a client with optional proxy support.
func NewBackendClient(baseURL, apiKey, proxyURL string, timeout time.Duration) *BackendClient {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BackendClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (c *BackendClient) Name() string { return "backend" }

type rangeRequest struct {
	Symbol    string `json:"symbol"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// FetchPrices calls POST /fetch_data. Rows carry the close either under
// "Close_<SYMBOL>" or plain "Close".
func (c *BackendClient) FetchPrices(ctx context.Context, symbol string, start, end time.Time) ([]model.PricePoint, error) {
	var resp struct {
		Data  []map[string]any `json:"data"`
		Error string           `json:"error"`
	}
	req := rangeRequest{Symbol: symbol, StartDate: start.Format(model.DateLayout), EndDate: end.Format(model.DateLayout)}
	if err := c.post(ctx, "/fetch_data", req, &resp); err != nil {
		return nil, fmt.Errorf("fetch prices: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("fetch prices: %w: %s", ErrBackend, resp.Error)
	}

	points := make([]model.PricePoint, 0, len(resp.Data))
	for i, row := range resp.Data {
		p, err := decodePriceRow(row, symbol)
		if err != nil {
			return nil, fmt.Errorf("fetch prices: row %d: %w", i, err)
		}
		points = append(points, p)
	}
	return points, nil
}

// Train calls POST /train_model and returns the service message.
func (c *BackendClient) Train(ctx context.Context, symbol string, start, end time.Time) (string, error) {
	var resp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	req := rangeRequest{Symbol: symbol, StartDate: start.Format(model.DateLayout), EndDate: end.Format(model.DateLayout)}
	if err := c.post(ctx, "/train_model", req, &resp); err != nil {
		return "", fmt.Errorf("train model: %w", err)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("train model: %w: %s", ErrBackend, resp.Error)
	}
	return resp.Message, nil
}

// Predict calls POST /get_predictions with the fetched series. The chart, when
// present, is base64 in the payload and returned decoded.
func (c *BackendClient) Predict(ctx context.Context, symbol string, prices []model.PricePoint) (*PredictionBatch, error) {
	rows := make([]map[string]any, len(prices))
	closeKey := "Close_" + symbol
	for i, p := range prices {
		rows[i] = map[string]any{"Date": p.Date, closeKey: p.Close.InexactFloat64()}
	}
	req := struct {
		Symbol string           `json:"symbol"`
		Data   []map[string]any `json:"data"`
	}{Symbol: symbol, Data: rows}

	var resp struct {
		Predictions []struct {
			Date   string `json:"Date"`
			Action string `json:"Action"`
		} `json:"predictions"`
		Chart string `json:"chart"`
		Error string `json:"error"`
	}
	if err := c.post(ctx, "/get_predictions", req, &resp); err != nil {
		return nil, fmt.Errorf("get predictions: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("get predictions: %w: %s", ErrBackend, resp.Error)
	}

	batch := &PredictionBatch{Predictions: make([]model.Prediction, 0, len(resp.Predictions))}
	for _, p := range resp.Predictions {
		batch.Predictions = append(batch.Predictions, model.Prediction{
			Date:   normalizeDate(p.Date),
			Action: model.ParseAction(p.Action),
		})
	}
	if resp.Chart != "" {
		chart, err := base64.StdEncoding.DecodeString(resp.Chart)
		if err != nil {
			return nil, fmt.Errorf("get predictions: decode chart: %w", err)
		}
		batch.Chart = chart
	}
	return batch, nil
}

func (c *BackendClient) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("post %s: status %d, body: %s", path, resp.StatusCode, string(respBody))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func decodePriceRow(row map[string]any, symbol string) (model.PricePoint, error) {
	rawDate, _ := row["Date"].(string)
	if rawDate == "" {
		return model.PricePoint{}, fmt.Errorf("%w: missing Date", ErrInvalidDate)
	}
	v, ok := row["Close_"+symbol]
	if !ok {
		v, ok = row["Close"]
	}
	if !ok {
		return model.PricePoint{}, fmt.Errorf("%w: missing close for %s", ErrInvalidPrice, rawDate)
	}
	f, ok := v.(float64)
	if !ok {
		return model.PricePoint{}, fmt.Errorf("%w: non-numeric close %v for %s", ErrInvalidPrice, v, rawDate)
	}
	return model.PricePoint{Date: normalizeDate(rawDate), Close: decimal.NewFromFloat(f)}, nil
}

// normalizeDate trims timestamp suffixes such as "2023-01-03T00:00:00".
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > len(model.DateLayout) {
		return s[:len(model.DateLayout)]
	}
	return s
}
