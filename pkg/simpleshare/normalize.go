package simpleshare

import (
	"log/slog"
	"reflect"
	"sort"
	"strconv"
	"time"
)

// Normalizer turns caller descriptors into native payloads. Only fields the
// caller set are copied, numeric price and commerce amounts are sent as
// strings, and non-string custom values are reported but still transmitted.
type Normalizer struct {
	logger  *slog.Logger
	metrics *Metrics
}

// NewNormalizer creates a normalizer that reports warnings to logger. A nil
// logger falls back to slog.Default().
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger}
}

// NormalizeContentMetadata normalizes md with the default logger.
func NormalizeContentMetadata(md ContentMetadata) Payload {
	return NewNormalizer(nil).ContentMetadata(md)
}

// NormalizeEventFields normalizes f with the default logger.
func NormalizeEventFields(f EventFields) Payload {
	return NewNormalizer(nil).EventFields(f)
}

// ContentMetadata builds the create payload for a content descriptor.
func (n *Normalizer) ContentMetadata(md ContentMetadata) Payload {
	out := Payload{}
	putString(out, "canonicalUrl", md.CanonicalURL)
	putString(out, "title", md.Title)
	putString(out, "contentDescription", md.ContentDescription)
	putString(out, "contentImageUrl", md.ContentImageURL)
	if len(md.Keywords) > 0 {
		out["keywords"] = append([]string(nil), md.Keywords...)
	}
	putBool(out, "locallyIndex", md.LocallyIndex)

	publiclyIndex := md.PubliclyIndex
	if md.ContentIndexingMode != "" {
		n.deprecated("contentIndexingMode", "publiclyIndex")
		if publiclyIndex == nil {
			publiclyIndex = Bool(md.ContentIndexingMode == IndexModePublic)
		}
	}
	putBool(out, "publiclyIndex", publiclyIndex)

	if md.ExpirationDate != nil {
		out["expirationDate"] = md.ExpirationDate.UTC().Format(time.RFC3339)
	}

	var product ProductMetadata
	hasProduct := md.ContentMetadata != nil
	if hasProduct {
		product = *md.ContentMetadata
	}
	if md.Price != nil {
		n.deprecated("price", "contentMetadata.price")
		if product.Price == nil {
			product.Price = md.Price
		}
		hasProduct = true
	}
	if md.Currency != "" {
		n.deprecated("currency", "contentMetadata.currency")
		if product.Currency == "" {
			product.Currency = md.Currency
		}
		hasProduct = true
	}
	if len(md.Metadata) > 0 {
		n.deprecated("metadata", "contentMetadata.customMetadata")
		merged := make(map[string]interface{}, len(md.Metadata)+len(product.CustomMetadata))
		for k, v := range md.Metadata {
			merged[k] = v
		}
		for k, v := range product.CustomMetadata {
			merged[k] = v
		}
		product.CustomMetadata = merged
		hasProduct = true
	}
	if hasProduct {
		out["contentMetadata"] = n.productMetadata(product)
	}

	return out
}

func (n *Normalizer) productMetadata(p ProductMetadata) Payload {
	out := Payload{}
	putString(out, "contentSchema", p.ContentSchema)
	putFloat(out, "quantity", p.Quantity)
	putNumericString(out, "price", p.Price)
	putString(out, "currency", p.Currency)
	putString(out, "sku", p.SKU)
	putString(out, "productName", p.ProductName)
	putString(out, "productBrand", p.ProductBrand)
	putString(out, "productCategory", p.ProductCategory)
	putString(out, "productVariant", p.ProductVariant)
	putString(out, "condition", p.Condition)
	putFloat(out, "ratingAverage", p.RatingAverage)
	putFloat(out, "ratingCount", p.RatingCount)
	putFloat(out, "ratingMax", p.RatingMax)
	if len(p.ImageCaptions) > 0 {
		out["imageCaptions"] = append([]string(nil), p.ImageCaptions...)
	}
	if p.CustomMetadata != nil {
		n.warnNonString("customMetadata", p.CustomMetadata)
		out["customMetadata"] = cloneValue(p.CustomMetadata)
	}
	return out
}

// EventFields builds the log-event payload for an event's fields.
func (n *Normalizer) EventFields(f EventFields) Payload {
	out := Payload{}
	putString(out, "transactionID", f.TransactionID)
	putString(out, "currency", f.Currency)
	putNumericString(out, "revenue", f.Revenue)
	putNumericString(out, "shipping", f.Shipping)
	putNumericString(out, "tax", f.Tax)
	putString(out, "coupon", f.Coupon)
	putString(out, "affiliation", f.Affiliation)
	putString(out, "description", f.Description)
	putString(out, "searchQuery", f.SearchQuery)
	putString(out, "alias", f.Alias)
	if f.CustomData != nil {
		n.warnNonString("customData", f.CustomData)
		out["customData"] = cloneValue(f.CustomData)
	}
	return out
}

// LinkProperties builds the link-properties payload.
func (n *Normalizer) LinkProperties(lp LinkProperties) Payload {
	out := Payload{}
	putString(out, "alias", lp.Alias)
	putString(out, "campaign", lp.Campaign)
	putString(out, "channel", lp.Channel)
	putString(out, "feature", lp.Feature)
	putString(out, "stage", lp.Stage)
	if len(lp.Tags) > 0 {
		out["tags"] = append([]string(nil), lp.Tags...)
	}
	return out
}

// ControlParams copies control parameters into a payload.
func (n *Normalizer) ControlParams(cp ControlParams) Payload {
	out := Payload{}
	for k, v := range cp {
		out[k] = v
	}
	return out
}

// ShareOptions builds the share-sheet options payload.
func (n *Normalizer) ShareOptions(so ShareOptions) Payload {
	out := Payload{}
	putString(out, "messageHeader", so.MessageHeader)
	putString(out, "messageBody", so.MessageBody)
	putString(out, "emailSubject", so.EmailSubject)
	putString(out, "title", so.Title)
	putString(out, "text", so.Text)
	return out
}

// warnNonString logs one warning per key whose value is not a string. The
// values are left untouched.
func (n *Normalizer) warnNonString(field string, values map[string]interface{}) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		kind := valueType(values[k])
		if kind == "string" {
			continue
		}
		n.logger.Warn("Custom value is not a string; the native boundary may drop it",
			"field", field, "key", k, "type", kind)
		n.metrics.recordWarning(field)
	}
}

func (n *Normalizer) deprecated(field, replacement string) {
	n.logger.Warn("Deprecated content metadata field", "field", field, "replacement", replacement)
	n.metrics.recordWarning("deprecated")
}

// valueType names the dynamic type of v in the vocabulary of the payload
// format: string, number, boolean, array, object or null.
func valueType(v interface{}) string {
	if v == nil {
		return "null"
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return "object"
	}
}

// FormatNumber renders v in its shortest decimal form ("10", "10.5").
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func putString(p Payload, key, v string) {
	if v != "" {
		p[key] = v
	}
}

func putBool(p Payload, key string, v *bool) {
	if v != nil {
		p[key] = *v
	}
}

func putFloat(p Payload, key string, v *float64) {
	if v != nil {
		p[key] = *v
	}
}

func putNumericString(p Payload, key string, v *float64) {
	if v != nil {
		p[key] = FormatNumber(*v)
	}
}

func clonePayload(p Payload) Payload {
	if p == nil {
		return nil
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case Payload:
		return clonePayload(t)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, vv := range t {
			out[k] = cloneValue(vv)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, vv := range t {
			out[i] = cloneValue(vv)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}
