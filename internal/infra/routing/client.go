package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	domainlistings "rentbook/internal/domain/listings"
	domainpricing "rentbook/internal/domain/pricing"
)

var ErrEndpointMissing = errors.New("routing: endpoint not configured")

// Client asks a routing service for the road distance of a delivery. When the
// service fails and Fallback is set, the fallback distance is used instead.
type Client struct {
	HTTP     *http.Client
	Endpoint string
	Timeout  time.Duration
	Fallback domainpricing.DistanceCalculator
	Logger   *slog.Logger
}

func NewClient(endpoint string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		HTTP:     &http.Client{},
		Endpoint: endpoint,
		Timeout:  timeout,
		Fallback: domainpricing.Haversine{},
		Logger:   logger,
	}
}

type point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type distanceRequest struct {
	From point `json:"from"`
	To   point `json:"to"`
}

type distanceResponse struct {
	DistanceKm *float64 `json:"distance_km"`
}

func (c *Client) DistanceKm(ctx context.Context, from, to domainlistings.Coordinates) (float64, error) {
	km, err := c.query(ctx, from, to)
	if err == nil {
		return km, nil
	}
	if c.Fallback == nil || ctx.Err() != nil {
		return 0, err
	}
	c.logger().Warn("routing failed, using fallback distance", slog.Any("err", err))
	return c.Fallback.DistanceKm(ctx, from, to)
}

func (c *Client) query(ctx context.Context, from, to domainlistings.Coordinates) (float64, error) {
	if c.Endpoint == "" {
		return 0, ErrEndpointMissing
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	body, err := json.Marshal(distanceRequest{
		From: point{Lat: from.Lat, Lon: from.Lon},
		To:   point{Lat: to.Lat, Lon: to.Lon},
	})
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("routing: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("routing: status %d: %s", resp.StatusCode, string(snippet))
	}
	var out distanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("routing: decode: %w", err)
	}
	if out.DistanceKm == nil || *out.DistanceKm < 0 {
		return 0, errors.New("routing: response without distance")
	}
	return *out.DistanceKm, nil
}

func (c *Client) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

var _ domainpricing.DistanceCalculator = (*Client)(nil)
