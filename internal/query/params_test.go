package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromValuesBrackets(t *testing.T) {
	values, err := url.ParseQuery("attributes[0][attribute]=pa_color&attributes[0][slug]=red&attributes[1][attribute]=pa_size&attributes[1][term_id]=7&include[]=3&include[]=4&orderby=price")
	require.NoError(t, err)

	raw := FromValues(values)

	assert.Equal(t, "price", raw["orderby"])
	assert.Equal(t, []interface{}{"3", "4"}, raw["include"])
	attrs, ok := raw["attributes"].([]interface{})
	require.True(t, ok)
	require.Len(t, attrs, 2)
	assert.Equal(t, map[string]interface{}{"attribute": "pa_color", "slug": "red"}, attrs[0])
}

func TestDecodeFromQuery(t *testing.T) {
	values, err := url.ParseQuery("page=2&per_page=5&featured=true&fields=id,name,%20prices.price&include=1,2&attributes[0][attribute]=pa_color&attributes[0][slug]=red,blue&rating[]=4&rating[]=5")
	require.NoError(t, err)

	params, err := Decode(FromValues(values))
	require.NoError(t, err)

	assert.Equal(t, 2, params.Page)
	assert.Equal(t, 5, params.PerPage)
	require.NotNil(t, params.Featured)
	assert.True(t, *params.Featured)
	assert.Nil(t, params.OnSale)
	assert.Equal(t, []string{"id", "name", "prices.price"}, params.Fields)
	assert.Equal(t, []uint{1, 2}, params.Include)
	assert.Equal(t, []int{4, 5}, params.Rating)
	require.Len(t, params.Attributes, 1)
	assert.Equal(t, []string{"red", "blue"}, params.Attributes[0].Slug)
}

func TestDecodeRejectsMalformedValues(t *testing.T) {
	_, err := Decode(map[string]interface{}{"per_page": "lots"})

	var paramErr *ParamError
	assert.ErrorAs(t, err, &paramErr)
}

func TestDecodeRejectsMalformedDates(t *testing.T) {
	_, err := Decode(map[string]interface{}{"before": "yesterday"})
	assert.Error(t, err)
}
