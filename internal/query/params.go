package query

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Params is the typed form of a product collection request.
type Params struct {
	Page              int               `mapstructure:"page"`
	PerPage           int               `mapstructure:"per_page"`
	Offset            int               `mapstructure:"offset"`
	Order             string            `mapstructure:"order"`
	OrderBy           string            `mapstructure:"orderby"`
	Include           []uint            `mapstructure:"include"`
	Exclude           []uint            `mapstructure:"exclude"`
	Parent            []uint            `mapstructure:"parent"`
	ParentExclude     []uint            `mapstructure:"parent_exclude"`
	Search            string            `mapstructure:"search"`
	Slug              string            `mapstructure:"slug"`
	SKU               string            `mapstructure:"sku"`
	Type              string            `mapstructure:"type"`
	IncludeVariations *bool             `mapstructure:"include_variations"`
	Category          string            `mapstructure:"category"`
	CategoryOperator  string            `mapstructure:"category_operator"`
	Tag               string            `mapstructure:"tag"`
	TagOperator       string            `mapstructure:"tag_operator"`
	Attributes        []AttributeFilter `mapstructure:"attributes"`
	AttributeRelation string            `mapstructure:"attribute_relation"`
	HideFree          bool              `mapstructure:"hide_free"`
	Featured          *bool             `mapstructure:"featured"`
	MinPrice          string            `mapstructure:"min_price"`
	MaxPrice          string            `mapstructure:"max_price"`
	StockStatus       *bool             `mapstructure:"stock_status"`
	OnSale            *bool             `mapstructure:"on_sale"`
	CatalogVisibility string            `mapstructure:"catalog_visibility"`
	Rating            []int             `mapstructure:"rating"`
	Before            *time.Time        `mapstructure:"before"`
	After             *time.Time        `mapstructure:"after"`

	// Response shaping, carried along for the projector.
	Fields      []string `mapstructure:"fields"`
	ShowReviews bool     `mapstructure:"show_reviews"`
	TaxDisplay  string   `mapstructure:"tax_display"`
}

// AttributeFilter filters by terms of a global attribute taxonomy.
type AttributeFilter struct {
	Attribute string   `mapstructure:"attribute"`
	TermID    []string `mapstructure:"term_id"`
	Slug      []string `mapstructure:"slug"`
	Operator  string   `mapstructure:"operator"`
}

// ParamError reports a request parameter that could not be interpreted.
type ParamError struct {
	Param   string
	Message string
}

func (e *ParamError) Error() string {
	if e.Param == "" {
		return "invalid parameter: " + e.Message
	}
	return fmt.Sprintf("invalid parameter %s: %s", e.Param, e.Message)
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

func stringToTimeHook() mapstructure.DecodeHookFunc {
	timeType := reflect.TypeOf(time.Time{})
	return func(f, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String || t != timeType {
			return data, nil
		}
		raw := strings.TrimSpace(data.(string))
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, raw); err == nil {
				return ts, nil
			}
		}
		return nil, fmt.Errorf("%q is not a valid date", raw)
	}
}

func trimStringsHook() mapstructure.DecodeHookFunc {
	stringSliceType := reflect.TypeOf([]string(nil))
	return func(f, t reflect.Type, data interface{}) (interface{}, error) {
		if t != stringSliceType {
			return data, nil
		}
		items, ok := data.([]string)
		if !ok {
			return data, nil
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		return out, nil
	}
}

var paramsDecodeHook = mapstructure.ComposeDecodeHookFunc(
	stringToTimeHook(),
	mapstructure.StringToSliceHookFunc(","),
	trimStringsHook(),
)

// Decode converts a raw parameter map into Params. Unknown keys are ignored.
func Decode(raw map[string]interface{}) (Params, error) {
	var params Params
	if err := DecodeInto(raw, &params); err != nil {
		return Params{}, err
	}
	return params, nil
}

// DecodeInto decodes a raw parameter map into the mapstructure tagged struct
// out, with the same conversions Decode applies.
func DecodeInto(raw map[string]interface{}, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       paramsDecodeHook,
		Result:           out,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return &ParamError{Message: err.Error()}
	}
	return nil
}

// FromValues builds a nested parameter map from query string values, understanding
// the bracket forms "attributes[0][slug]=red" and "include[]=1&include[]=2".
func FromValues(values url.Values) map[string]interface{} {
	root := make(map[string]interface{})
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		path := splitKey(key)
		var value interface{} = vals[len(vals)-1]
		if path[len(path)-1] == "" {
			path = path[:len(path)-1]
			list := make([]interface{}, len(vals))
			for i, v := range vals {
				list[i] = v
			}
			value = list
		}
		if len(path) == 0 {
			continue
		}
		assign(root, path, value)
	}
	for k, v := range root {
		root[k] = normalize(v)
	}
	return root
}

func splitKey(key string) []string {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return []string{key}
	}
	path := []string{key[:open]}
	for _, seg := range strings.Split(key[open+1:len(key)-1], "][") {
		path = append(path, seg)
	}
	return path
}

func assign(node map[string]interface{}, path []string, value interface{}) {
	for _, seg := range path[:len(path)-1] {
		child, ok := node[seg].(map[string]interface{})
		if !ok {
			child = make(map[string]interface{})
			node[seg] = child
		}
		node = child
	}
	node[path[len(path)-1]] = value
}

// normalize turns maps keyed only by integers into ordered slices.
func normalize(v interface{}) interface{} {
	m, ok := v.(map[string]interface{})
	if !ok {
		return v
	}
	for k, child := range m {
		m[k] = normalize(child)
	}
	if len(m) == 0 {
		return m
	}
	indexes := make([]int, 0, len(m))
	for k := range m {
		i, err := strconv.Atoi(k)
		if err != nil {
			return m
		}
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)
	list := make([]interface{}, 0, len(indexes))
	for _, i := range indexes {
		list = append(list, m[strconv.Itoa(i)])
	}
	return list
}
