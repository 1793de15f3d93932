package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Coercion(t *testing.T) {
	f, err := Decode([]byte(`{"searchTerm":" laptop ","category":"Electronica","condition":"used","minPrice":"9,000","maxPrice":500}`), DefaultSchema())
	require.NoError(t, err)

	assert.Equal(t, "laptop", f.SearchTerm)
	assert.Equal(t, "electronica", f.Category)
	assert.Equal(t, "Usado", f.Condition)
	require.NotNil(t, f.MinPrice)
	assert.Equal(t, 500.0, *f.MinPrice, "min and max are swapped")
	assert.Equal(t, 9000.0, *f.MaxPrice)
}

func TestDecode_DropsOutOfSchemaValues(t *testing.T) {
	f, err := Decode([]byte(`{"searchTerm":"muñeca","category":"juguetes","condition":"Excelente","minPrice":-5,"maxPrice":"mucho"}`), DefaultSchema())
	require.NoError(t, err)

	assert.Equal(t, "muñeca", f.SearchTerm)
	assert.Empty(t, f.Category)
	assert.Empty(t, f.Condition)
	assert.Nil(t, f.MinPrice)
	assert.Nil(t, f.MaxPrice)
}

func TestDecode_ZeroPriceIsAbsent(t *testing.T) {
	f, err := Decode([]byte(`{"searchTerm":"bicicleta","minPrice":0,"maxPrice":0}`), DefaultSchema())
	require.NoError(t, err)

	assert.Equal(t, "bicicleta", f.SearchTerm)
	assert.Nil(t, f.MinPrice)
	assert.Nil(t, f.MaxPrice)

	f, err = Decode([]byte(`{"minPrice":"0","maxPrice":2000}`), DefaultSchema())
	require.NoError(t, err)
	assert.Nil(t, f.MinPrice)
	require.NotNil(t, f.MaxPrice)
	assert.Equal(t, 2000.0, *f.MaxPrice)
}

func TestDecode_CodeFence(t *testing.T) {
	f, err := Decode([]byte("```json\n{\"searchTerm\":\"tenis\"}\n```"), DefaultSchema())
	require.NoError(t, err)
	assert.Equal(t, "tenis", f.SearchTerm)
}

func TestDecode_Unusable(t *testing.T) {
	_, err := Decode([]byte(`not json`), DefaultSchema())
	assert.Error(t, err)

	_, err = Decode([]byte(`{}`), DefaultSchema())
	assert.ErrorIs(t, err, ErrNoMatch)

	_, err = Decode([]byte(`{"searchTerm":"","category":null}`), DefaultSchema())
	assert.ErrorIs(t, err, ErrNoMatch)
}
