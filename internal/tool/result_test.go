package tool

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResult_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		result Result
	}{
		{name: "success with object", result: Success(map[string]any{"html": "<html></html>", "n": 2.0})},
		{name: "success with string", result: Success("done")},
		{name: "success with list", result: Success([]any{"a", true, nil})},
		{name: "success without payload", result: Success(nil)},
		{name: "failure", result: Failure("API request failed with status: 500")},
		{name: "failure without message", result: Failure("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := Encode(tt.result)
			require.NoError(t, err)
			require.True(t, json.Valid([]byte(encoded)))

			decoded, err := Decode(encoded)
			require.NoError(t, err)
			require.Equal(t, tt.result, decoded)
		})
	}
}

func TestResult_WireShape(t *testing.T) {
	encoded, err := Encode(Success(map[string]any{"color": "#ff0000"}))
	require.NoError(t, err)
	require.JSONEq(t, `{"success":true,"payload":{"color":"#ff0000"}}`, encoded)

	encoded, err = Encode(Failuref("unknown tool: %s", "fly"))
	require.NoError(t, err)
	require.JSONEq(t, `{"success":false,"message":"unknown tool: fly"}`, encoded)
}

func TestResult_EncodeUnserializablePayload(t *testing.T) {
	_, err := Encode(Success(make(chan int)))
	require.Error(t, err)
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode("not json")
	require.Error(t, err)
}

func TestParseArguments(t *testing.T) {
	args, err := ParseArguments(`{"color":"#123456"}`)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"color": "#123456"}, args)

	for _, empty := range []string{"", "  ", "null", "{}"} {
		args, err = ParseArguments(empty)
		require.NoError(t, err, "input %q", empty)
		require.Empty(t, args)
		require.NotNil(t, args)
	}

	for _, bad := range []string{"{", "[1,2]", `"text"`, "42"} {
		_, err = ParseArguments(bad)
		require.Error(t, err, "input %q", bad)
	}
}

func TestObjectSchema(t *testing.T) {
	schema := ObjectSchema(map[string]Param{
		"size":  {Type: "string", Description: "Font size"},
		"count": {Type: "int"},
		"tags":  {Type: "[]string"},
	}, "size")

	require.Equal(t, "object", schema.Type)
	require.Equal(t, []string{"size"}, schema.Required)
	require.Equal(t, "string", schema.Properties["size"].Type)
	require.Equal(t, "Font size", schema.Properties["size"].Description)
	require.Equal(t, "integer", schema.Properties["count"].Type)
	require.Equal(t, "array", schema.Properties["tags"].Type)
	require.Equal(t, "string", schema.Properties["tags"].Items.Type)
}
