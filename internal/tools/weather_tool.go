package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

const (
	// WeatherToolName is the function name the model uses to request a lookup.
	WeatherToolName = "get_current_weather"

	// DefaultWeatherBaseURL is the weatherapi.com v1 API root.
	DefaultWeatherBaseURL = "https://api.weatherapi.com/v1"

	UnitCelsius    = "celsius"
	UnitFahrenheit = "fahrenheit"

	// WeatherFallback is the reply used whenever a lookup fails for any reason.
	WeatherFallback = "Sorry, I could not fetch the weather details."

	currentWeatherPath = "/current.json"
)

// WeatherTool looks up the current temperature for a place using weatherapi.com.
//
// Lookup failures never reach the caller as errors: network errors, non-200
// responses, malformed JSON and missing fields all collapse into
// WeatherFallback. The underlying cause is logged, since a revoked key looks
// exactly like a transient outage from the user's side.
type WeatherTool struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ ToolExecutor = (*WeatherTool)(nil)

// NewWeatherTool creates a WeatherTool. An empty baseURL selects
// DefaultWeatherBaseURL and a nil httpClient selects http.DefaultClient;
// request lifetime is bounded by the caller's context.
func NewWeatherTool(apiKey, baseURL string, httpClient *http.Client) (*WeatherTool, error) {
	if apiKey == "" {
		return nil, errors.New("weather API key cannot be empty")
	}
	if baseURL == "" {
		baseURL = DefaultWeatherBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &WeatherTool{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}, nil
}

func (wt *WeatherTool) Definition() Tool {
	return NewFunctionTool(
		WeatherToolName,
		"Call this only when you need to get the current weather in a given location.",
		JSONSchema{
			Type: "object",
			Properties: map[string]*JSONSchema{
				"location": {
					Type:        "string",
					Description: "city, state, country",
				},
				"unit": {
					Type: "string",
					Enum: []string{UnitCelsius, UnitFahrenheit},
				},
			},
			Required: []string{"location"},
		},
	)
}

// Execute validates the model's arguments and performs the lookup. Only
// malformed arguments produce an error; lookup failures yield WeatherFallback.
func (wt *WeatherTool) Execute(ctx context.Context, arguments map[string]any) (string, error) {
	location, ok := arguments["location"].(string)
	if !ok {
		return "", fmt.Errorf("%w: %s requires a string \"location\"", ErrInvalidArguments, WeatherToolName)
	}

	unit := UnitCelsius
	if raw, present := arguments["unit"]; present && raw != nil {
		s, ok := raw.(string)
		if !ok {
			return "", fmt.Errorf("%w: %s \"unit\" must be a string", ErrInvalidArguments, WeatherToolName)
		}
		if s != "" {
			unit = s
		}
	}

	return wt.CurrentTemperature(ctx, location, unit), nil
}

// CurrentTemperature returns "The temperature in {location} is {temp}°{U}.",
// where U is the upper-cased first letter of unit. Any unit other than
// celsius reads the Fahrenheit field.
func (wt *WeatherTool) CurrentTemperature(ctx context.Context, location, unit string) string {
	temp, err := wt.fetchTemperature(ctx, location, unit)
	if err != nil {
		log.Printf("⚠️ Weather lookup for %q failed: %v", location, err)
		return WeatherFallback
	}
	return fmt.Sprintf("The temperature in %s is %s°%s.", location, temp, unitLetter(unit))
}

func (wt *WeatherTool) fetchTemperature(ctx context.Context, location, unit string) (string, error) {
	params := url.Values{}
	params.Set("key", wt.apiKey)
	params.Set("q", location)
	endpoint := wt.baseURL + currentWeatherPath + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create weather API request: %w", err)
	}
	req.Header.Set("User-Agent", "askbot/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := wt.httpClient.Do(req)
	if err != nil {
		// *url.Error embeds the request URL, which carries the API key.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return "", fmt.Errorf("failed to call weather API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("weather API returned non-200 status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read weather API response: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return "", errors.New("weather API returned malformed JSON")
	}

	field := "current.temp_f"
	if unit == UnitCelsius {
		field = "current.temp_c"
	}
	temp := gjson.GetBytes(body, field)
	if temp.Type != gjson.Number {
		return "", fmt.Errorf("weather API response has no numeric %s", field)
	}
	// Raw keeps the provider's own formatting: 18 stays "18", 18.5 stays "18.5".
	return temp.Raw, nil
}

func unitLetter(unit string) string {
	r, _ := utf8.DecodeRuneInString(unit)
	if r == utf8.RuneError {
		return ""
	}
	return string(unicode.ToUpper(r))
}
