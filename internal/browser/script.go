// File: internal/browser/script.go
package browser

import jsoniter "github.com/json-iterator/go"

// jsString renders s as a JavaScript string literal. JSON string encoding is
// a valid JS string literal, which keeps XPath expressions with quotes and
// user text safe to splice into scripts.
func jsString(s string) string {
	out, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalToString(s)
	if err != nil {
		return `""`
	}
	return out
}
