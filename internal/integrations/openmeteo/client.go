package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"year-progress-bot/internal/domain"
)

const (
	defaultBaseURL = "https://api.open-meteo.com/v1"
	defaultTimeout = 10 * time.Second

	dailyFields = "temperature_2m_max,temperature_2m_min,apparent_temperature_max,sunrise,sunset,weather_code"
)

// Location is the point the forecast is requested for.
type Location struct {
	Latitude  float64
	Longitude float64
	Timezone  string
}

// Madrid is the default forecast location.
var Madrid = Location{Latitude: 40.4168, Longitude: -3.7038, Timezone: "Europe/Madrid"}

// forecastResponse is the subset of the /forecast response read here. Open-Meteo
// fills missing values with null, hence the pointers.
type forecastResponse struct {
	Daily struct {
		Time                   []string   `json:"time"`
		Temperature2mMax       []*float64 `json:"temperature_2m_max"`
		Temperature2mMin       []*float64 `json:"temperature_2m_min"`
		ApparentTemperatureMax []*float64 `json:"apparent_temperature_max"`
		Sunrise                []string   `json:"sunrise"`
		Sunset                 []string   `json:"sunset"`
		WeatherCode            []*int     `json:"weather_code"`
	} `json:"daily"`
}

// HTTPStatusError captures non-2xx responses from the forecast API.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("openmeteo: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client fetches today's forecast for a single fixed location.
type Client struct {
	baseURL    string
	httpClient *http.Client
	location   Location
	logger     *slog.Logger
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client for loc.
func NewClient(loc Location, opts ...Option) (*Client, error) {
	if loc.Latitude < -90 || loc.Latitude > 90 {
		return nil, fmt.Errorf("openmeteo: latitude %v out of range", loc.Latitude)
	}
	if loc.Longitude < -180 || loc.Longitude > 180 {
		return nil, fmt.Errorf("openmeteo: longitude %v out of range", loc.Longitude)
	}
	if strings.TrimSpace(loc.Timezone) == "" {
		loc.Timezone = "auto"
	}
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		location:   loc,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Today returns today's forecast. Any failure is logged and reported as
// domain.Unavailable; Today never fails.
func (c *Client) Today(ctx context.Context) domain.Weather {
	w, err := c.Fetch(ctx)
	if err != nil {
		c.log().Warn("weather unavailable", "err", err)
		return domain.Unavailable
	}
	return w
}

// Fetch requests today's forecast and returns any failure to the caller.
func (c *Client) Fetch(ctx context.Context) (domain.Weather, error) {
	reqURL := forecastURL(c.baseURL, c.location)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return domain.Weather{}, fmt.Errorf("openmeteo: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	raw, err := c.doJSONRequest(req, reqURL)
	if err != nil {
		return domain.Weather{}, fmt.Errorf("openmeteo: request failed: %w", err)
	}

	var payload forecastResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return domain.Weather{}, fmt.Errorf("openmeteo: decode response: %w", err)
	}
	return toWeather(payload)
}

func (c *Client) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}

func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Timeout: defaultTimeout}
}

func forecastURL(baseURL string, loc Location) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	if !strings.HasSuffix(base, "/v1") {
		base += "/v1"
	}
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(loc.Latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(loc.Longitude, 'f', -1, 64))
	params.Set("daily", dailyFields)
	params.Set("timezone", loc.Timezone)
	params.Set("forecast_days", "1")
	return base + "/forecast?" + params.Encode()
}

func (c *Client) doJSONRequest(req *http.Request, reqURL string) ([]byte, error) {
	res, doErr := c.resolvedHTTPClient().Do(req)
	if doErr != nil {
		return nil, doErr
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        reqURL,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}

func toWeather(p forecastResponse) (domain.Weather, error) {
	d := p.Daily
	tmin, err := first("temperature_2m_min", d.Temperature2mMin)
	if err != nil {
		return domain.Weather{}, err
	}
	tmax, err := first("temperature_2m_max", d.Temperature2mMax)
	if err != nil {
		return domain.Weather{}, err
	}
	feels, err := first("apparent_temperature_max", d.ApparentTemperatureMax)
	if err != nil {
		return domain.Weather{}, err
	}
	if len(d.Sunrise) == 0 || len(d.Sunset) == 0 {
		return domain.Weather{}, errors.New("openmeteo: response has no sunrise/sunset")
	}
	sunrise, err := parseLocalTime(d.Sunrise[0])
	if err != nil {
		return domain.Weather{}, fmt.Errorf("openmeteo: parse sunrise: %w", err)
	}
	sunset, err := parseLocalTime(d.Sunset[0])
	if err != nil {
		return domain.Weather{}, fmt.Errorf("openmeteo: parse sunset: %w", err)
	}

	w := domain.Weather{
		OK:         true,
		MinC:       tmin,
		MaxC:       tmax,
		FeelsLikeC: feels,
		Sunrise:    sunrise,
		Sunset:     sunset,
	}
	if len(d.WeatherCode) > 0 && d.WeatherCode[0] != nil {
		w.Code = *d.WeatherCode[0]
		w.HasCode = true
	}
	return w, nil
}

func first(field string, vals []*float64) (float64, error) {
	if len(vals) == 0 || vals[0] == nil {
		return 0, fmt.Errorf("openmeteo: response has no %s", field)
	}
	return *vals[0], nil
}

// Sunrise and sunset come back as wall-clock times in the requested timezone
// without an offset. Both are parsed the same way, so their difference is the
// daylight span.
func parseLocalTime(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}
