package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

const validBody = `{
  "squareFootage": 2200, "yearBuilt": 2010, "bedrooms": 3, "bathrooms": 2, "garage": 2,
  "propertyType": "single-family", "neighborhood": "suburbs",
  "hasPool": false, "hasFireplace": true, "hasHardwoodFloors": false, "recentlyUpdated": false
}`

func TestDecodeRequest_Valid(t *testing.T) {
	req, err := DecodeRequest(strings.NewReader(validBody))
	require.NoError(t, err)
	assert.Equal(t, referenceRequest(), req)
}

func TestDecodeRequest_Malformed(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"empty body", ``, ""},
		{"not json", `{squareFootage: 1}`, ""},
		{"missing field", strings.Replace(validBody, `"garage": 2,`, ``, 1), "garage"},
		{"null field", strings.Replace(validBody, `"hasPool": false`, `"hasPool": null`, 1), "hasPool"},
		{"string for number", strings.Replace(validBody, `"squareFootage": 2200`, `"squareFootage": "big"`, 1), "squareFootage"},
		{"fractional year", strings.Replace(validBody, `"yearBuilt": 2010`, `"yearBuilt": 2010.5`, 1), "yearBuilt"},
		{"number for bool", strings.Replace(validBody, `"hasFireplace": true`, `"hasFireplace": 1`, 1), "hasFireplace"},
		{"unknown field", strings.Replace(validBody, `"garage": 2,`, `"garage": 2, "roof": "tile",`, 1), "roof"},
		{"trailing garbage", validBody + ` garbage`, ""},
		{"second object", validBody + ` {}`, ""},
		{"negative bathrooms", strings.Replace(validBody, `"bathrooms": 2`, `"bathrooms": -2`, 1), "bathrooms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRequest(strings.NewReader(tt.body))
			require.Error(t, err)
			assert.Equal(t, errors.CodeInvalidInput, errors.Code(err))

			var mie *errors.MalformedInputError
			require.True(t, errors.As(err, &mie))
			assert.Equal(t, tt.wantField, mie.Field, "error: %v", err)
		})
	}
}

func TestDecodeRequest_TrailingWhitespace(t *testing.T) {
	req, err := DecodeRequest(strings.NewReader(validBody + "\n\t \n"))
	require.NoError(t, err)
	assert.Equal(t, referenceRequest(), req)
}

func TestDecodeRequest_AnyCategoryString(t *testing.T) {
	body := strings.Replace(validBody, `"single-family"`, `"spaceship"`, 1)
	req, err := DecodeRequest(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, "spaceship", req.PropertyType)
}
