package simpleshare_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-share/pkg/simpleshare"
)

type logRecord struct {
	Level   string `json:"level"`
	Msg     string `json:"msg"`
	Field   string `json:"field"`
	Key     string `json:"key"`
	Type    string `json:"type"`
	Replace string `json:"replacement"`
}

func newCapturingLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

func parseLogs(t *testing.T, buf *bytes.Buffer, level string) []logRecord {
	t.Helper()
	var records []logRecord
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec logRecord
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		if level == "" || rec.Level == level {
			records = append(records, rec)
		}
	}
	return records
}

func TestNormalizeContentMetadata_OmitsAbsentFields(t *testing.T) {
	payload := simpleshare.NormalizeContentMetadata(simpleshare.ContentMetadata{Title: "Shoes"})
	assert.Equal(t, simpleshare.Payload{"title": "Shoes"}, payload)

	assert.Empty(t, simpleshare.NormalizeContentMetadata(simpleshare.ContentMetadata{}))
}

func TestNormalizeContentMetadata_AllFields(t *testing.T) {
	expires := time.Date(2030, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))
	payload := simpleshare.NormalizeContentMetadata(simpleshare.ContentMetadata{
		CanonicalURL:       "https://example.com/p/1",
		Title:              "Shoes",
		ContentDescription: "Red shoes",
		ContentImageURL:    "https://example.com/p/1.png",
		Keywords:           []string{"red", "shoes"},
		LocallyIndex:       simpleshare.Bool(true),
		PubliclyIndex:      simpleshare.Bool(false),
		ExpirationDate:     &expires,
		ContentMetadata: &simpleshare.ProductMetadata{
			ContentSchema: "COMMERCE_PRODUCT",
			Quantity:      simpleshare.Float(2),
			Price:         simpleshare.Float(10),
			Currency:      "USD",
			SKU:           "SKU-1",
			RatingAverage: simpleshare.Float(4.5),
		},
	})

	assert.Equal(t, simpleshare.Payload{
		"canonicalUrl":       "https://example.com/p/1",
		"title":              "Shoes",
		"contentDescription": "Red shoes",
		"contentImageUrl":    "https://example.com/p/1.png",
		"keywords":           []string{"red", "shoes"},
		"locallyIndex":       true,
		"publiclyIndex":      false,
		"expirationDate":     "2030-01-02T02:04:05Z",
		"contentMetadata": simpleshare.Payload{
			"contentSchema": "COMMERCE_PRODUCT",
			"quantity":      2.0,
			"price":         "10",
			"currency":      "USD",
			"sku":           "SKU-1",
			"ratingAverage": 4.5,
		},
	}, payload)
}

func TestNormalizeEventFields_NumericCoercion(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  string
	}{
		{name: "integral", value: 10, want: "10"},
		{name: "fractional", value: 10.5, want: "10.5"},
		{name: "small", value: 0.01, want: "0.01"},
		{name: "negative", value: -3.25, want: "-3.25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := simpleshare.NormalizeEventFields(simpleshare.EventFields{
				Revenue:  simpleshare.Float(tt.value),
				Shipping: simpleshare.Float(tt.value),
				Tax:      simpleshare.Float(tt.value),
			})
			assert.Equal(t, tt.want, payload["revenue"])
			assert.Equal(t, tt.want, payload["shipping"])
			assert.Equal(t, tt.want, payload["tax"])
		})
	}
}

func TestNormalizeEventFields_Idempotent(t *testing.T) {
	fields := simpleshare.EventFields{
		TransactionID: "tx-1",
		Currency:      "EUR",
		Revenue:       simpleshare.Float(99.99),
		Coupon:        "SPRING",
		Description:   "order",
		SearchQuery:   "shoes",
		CustomData:    map[string]interface{}{"store": "web"},
	}

	first, err := json.Marshal(simpleshare.NormalizeEventFields(fields))
	require.NoError(t, err)
	second, err := json.Marshal(simpleshare.NormalizeEventFields(fields))
	require.NoError(t, err)
	assert.JSONEq(t, string(first), string(second))
}

func TestNormalizer_WarnsOnNonStringCustomValues(t *testing.T) {
	logger, buf := newCapturingLogger()
	n := simpleshare.NewNormalizer(logger)

	payload := n.EventFields(simpleshare.EventFields{
		CustomData: map[string]interface{}{"a": "x", "b": 1},
	})

	assert.Equal(t, map[string]interface{}{"a": "x", "b": 1}, payload["customData"])

	warnings := parseLogs(t, buf, "WARN")
	require.Len(t, warnings, 1)
	assert.Equal(t, "customData", warnings[0].Field)
	assert.Equal(t, "b", warnings[0].Key)
	assert.Equal(t, "number", warnings[0].Type)
}

func TestNormalizer_ValueTypes(t *testing.T) {
	tests := []struct {
		value interface{}
		want  string
	}{
		{value: true, want: "boolean"},
		{value: 3.5, want: "number"},
		{value: []interface{}{"x"}, want: "array"},
		{value: map[string]interface{}{"x": "y"}, want: "object"},
		{value: nil, want: "null"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			logger, buf := newCapturingLogger()
			n := simpleshare.NewNormalizer(logger)

			n.ContentMetadata(simpleshare.ContentMetadata{
				ContentMetadata: &simpleshare.ProductMetadata{
					CustomMetadata: map[string]interface{}{"k": tt.value},
				},
			})

			warnings := parseLogs(t, buf, "WARN")
			require.Len(t, warnings, 1)
			assert.Equal(t, "customMetadata", warnings[0].Field)
			assert.Equal(t, tt.want, warnings[0].Type)
		})
	}
}

func TestNormalizer_DeprecatedFields(t *testing.T) {
	logger, buf := newCapturingLogger()
	n := simpleshare.NewNormalizer(logger)

	payload := n.ContentMetadata(simpleshare.ContentMetadata{
		Price:               simpleshare.Float(5),
		Currency:            "USD",
		Metadata:            map[string]interface{}{"color": "red", "size": "m"},
		ContentIndexingMode: simpleshare.IndexModePrivate,
		ContentMetadata: &simpleshare.ProductMetadata{
			CustomMetadata: map[string]interface{}{"size": "l"},
		},
	})

	assert.Equal(t, false, payload["publiclyIndex"])
	assert.Equal(t, simpleshare.Payload{
		"price":    "5",
		"currency": "USD",
		"customMetadata": map[string]interface{}{
			"color": "red",
			"size":  "l",
		},
	}, payload["contentMetadata"])

	warnings := parseLogs(t, buf, "WARN")
	replaced := map[string]string{}
	for _, w := range warnings {
		replaced[w.Field] = w.Replace
	}
	assert.Equal(t, map[string]string{
		"contentIndexingMode": "publiclyIndex",
		"price":               "contentMetadata.price",
		"currency":            "contentMetadata.currency",
		"metadata":            "contentMetadata.customMetadata",
	}, replaced)
}

func TestNormalizer_ExplicitFieldWinsOverDeprecated(t *testing.T) {
	payload := simpleshare.NormalizeContentMetadata(simpleshare.ContentMetadata{
		PubliclyIndex:       simpleshare.Bool(true),
		ContentIndexingMode: simpleshare.IndexModePrivate,
		Price:               simpleshare.Float(1),
		ContentMetadata:     &simpleshare.ProductMetadata{Price: simpleshare.Float(2)},
	})

	assert.Equal(t, true, payload["publiclyIndex"])
	assert.Equal(t, "2", payload["contentMetadata"].(simpleshare.Payload)["price"])
}

func TestNormalizer_LinkAndShareOptions(t *testing.T) {
	n := simpleshare.NewNormalizer(nil)

	assert.Equal(t, simpleshare.Payload{
		"alias":   "promo",
		"channel": "sms",
		"tags":    []string{"a", "b"},
	}, n.LinkProperties(simpleshare.LinkProperties{Alias: "promo", Channel: "sms", Tags: []string{"a", "b"}}))

	assert.Equal(t, simpleshare.Payload{"$fallback_url": "https://example.com"},
		n.ControlParams(simpleshare.ControlParams{"$fallback_url": "https://example.com"}))

	assert.Equal(t, simpleshare.Payload{"title": "Look", "emailSubject": "Hi"},
		n.ShareOptions(simpleshare.ShareOptions{Title: "Look", EmailSubject: "Hi"}))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "10", simpleshare.FormatNumber(10))
	assert.Equal(t, "10.5", simpleshare.FormatNumber(10.5))
	assert.Equal(t, "1000000000000000000000", simpleshare.FormatNumber(1e21))
}
