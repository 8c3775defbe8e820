package toolbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const (
	geocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	forecastURL  = "https://api.open-meteo.com/v1/forecast"
)

type geocodingResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Country   string  `json:"country"`
	} `json:"results"`
}

type forecastResponse struct {
	CurrentWeather struct {
		Temperature   float64 `json:"temperature"`
		Windspeed     float64 `json:"windspeed"`
		Winddirection float64 `json:"winddirection"`
		Weathercode   int     `json:"weathercode"`
		Time          string  `json:"time"`
	} `json:"current_weather"`
}

// CurrentWeather holds the current conditions for a resolved location.
type CurrentWeather struct {
	Location    string  `json:"location"`
	Country     string  `json:"country"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Temperature float64 `json:"temperature_celsius"`
	Windspeed   float64 `json:"windspeed_kmh"`
	Condition   string  `json:"condition"`
	Time        string  `json:"time"`
}

// weatherCodes maps WMO weather interpretation codes to descriptions.
var weatherCodes = map[int]string{
	0:  "clear sky",
	1:  "mainly clear",
	2:  "partly cloudy",
	3:  "overcast",
	45: "fog",
	48: "depositing rime fog",
	51: "light drizzle",
	53: "moderate drizzle",
	55: "dense drizzle",
	61: "slight rain",
	63: "moderate rain",
	65: "heavy rain",
	71: "slight snow",
	73: "moderate snow",
	75: "heavy snow",
	80: "slight rain showers",
	81: "moderate rain showers",
	82: "violent rain showers",
	95: "thunderstorm",
}

// FetchWeather geocodes a city name and returns its current conditions.
func (s *Server) FetchWeather(ctx context.Context, city string) (*CurrentWeather, error) {
	var geo geocodingResponse
	q := url.Values{"name": {city}, "count": {"1"}}
	if err := s.getJSON(ctx, s.geocodingURL+"?"+q.Encode(), &geo); err != nil {
		return nil, fmt.Errorf("geocoding %q: %w", city, err)
	}
	if len(geo.Results) == 0 {
		return nil, fmt.Errorf("no location found for %q", city)
	}
	loc := geo.Results[0]

	var fc forecastResponse
	q = url.Values{
		"latitude":        {fmt.Sprintf("%.4f", loc.Latitude)},
		"longitude":       {fmt.Sprintf("%.4f", loc.Longitude)},
		"current_weather": {"true"},
	}
	if err := s.getJSON(ctx, s.forecastURL+"?"+q.Encode(), &fc); err != nil {
		return nil, fmt.Errorf("forecast for %q: %w", city, err)
	}

	cond, ok := weatherCodes[fc.CurrentWeather.Weathercode]
	if !ok {
		cond = fmt.Sprintf("code %d", fc.CurrentWeather.Weathercode)
	}
	return &CurrentWeather{
		Location:    loc.Name,
		Country:     loc.Country,
		Latitude:    loc.Latitude,
		Longitude:   loc.Longitude,
		Temperature: fc.CurrentWeather.Temperature,
		Windspeed:   fc.CurrentWeather.Windspeed,
		Condition:   cond,
		Time:        fc.CurrentWeather.Time,
	}, nil
}

// getJSON fetches a URL and decodes the JSON body into out.
func (s *Server) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
