package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWeatherTool(t *testing.T, handler http.HandlerFunc) (*WeatherTool, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	wt, err := NewWeatherTool("test-key", srv.URL, srv.Client())
	require.NoError(t, err)
	return wt, srv
}

func TestWeatherTool_Celsius(t *testing.T) {
	var gotPath, gotKey, gotQuery string
	wt, _ := newTestWeatherTool(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"current":{"temp_c":18,"temp_f":64.4}}`))
	})

	out, err := wt.Execute(context.Background(), map[string]any{"location": "Paris", "unit": "celsius"})
	require.NoError(t, err)
	assert.Equal(t, "The temperature in Paris is 18°C.", out)
	assert.Equal(t, "/current.json", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "Paris", gotQuery)
}

func TestWeatherTool_Fahrenheit(t *testing.T) {
	wt, _ := newTestWeatherTool(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"current":{"temp_c":18,"temp_f":64.4}}`))
	})

	out, err := wt.Execute(context.Background(), map[string]any{"location": "Paris, France", "unit": "fahrenheit"})
	require.NoError(t, err)
	assert.Equal(t, "The temperature in Paris, France is 64.4°F.", out)
}

func TestWeatherTool_DefaultsToCelsius(t *testing.T) {
	wt, _ := newTestWeatherTool(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"current":{"temp_c":-3.5,"temp_f":25.7}}`))
	})

	for _, args := range []map[string]any{
		{"location": "Oslo"},
		{"location": "Oslo", "unit": nil},
		{"location": "Oslo", "unit": ""},
	} {
		out, err := wt.Execute(context.Background(), args)
		require.NoError(t, err)
		assert.Equal(t, "The temperature in Oslo is -3.5°C.", out)
	}
}

func TestWeatherTool_FailuresYieldFallback(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"malformed json": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"current":`))
		},
		"missing field": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"current":{"temp_f":50}}`))
		},
		"non numeric field": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"current":{"temp_c":"warm"}}`))
		},
		"error status": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":{"code":2008,"message":"API key has been disabled."}}`))
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			wt, _ := newTestWeatherTool(t, handler)
			out, err := wt.Execute(context.Background(), map[string]any{"location": "Paris", "unit": "celsius"})
			require.NoError(t, err)
			assert.Equal(t, WeatherFallback, out)
		})
	}
}

func TestWeatherTool_NetworkErrorYieldsFallback(t *testing.T) {
	wt, srv := newTestWeatherTool(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	out := wt.CurrentTemperature(context.Background(), "Paris", UnitCelsius)
	assert.Equal(t, WeatherFallback, out)
}

func TestWeatherTool_InvalidArguments(t *testing.T) {
	wt, _ := newTestWeatherTool(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("weather API must not be called for invalid arguments")
	})

	_, err := wt.Execute(context.Background(), map[string]any{"unit": "celsius"})
	assert.ErrorIs(t, err, ErrInvalidArguments)

	_, err = wt.Execute(context.Background(), map[string]any{"location": "Paris", "unit": 7.0})
	assert.ErrorIs(t, err, ErrInvalidArguments)
}

func TestWeatherTool_Definition(t *testing.T) {
	wt, err := NewWeatherTool("k", "", nil)
	require.NoError(t, err)

	def := wt.Definition()
	assert.Equal(t, ToolTypeFunction, def.Type)
	assert.Equal(t, WeatherToolName, def.Function.Name)
	assert.Equal(t, []string{"location"}, def.Function.Parameters.Required)
	assert.Equal(t, []string{UnitCelsius, UnitFahrenheit}, def.Function.Parameters.Properties["unit"].Enum)
}

func TestNewWeatherTool_RequiresKey(t *testing.T) {
	_, err := NewWeatherTool("", "", nil)
	assert.Error(t, err)
}
