// Package codec provides the key and value codecs used by persistent stores.
//
// Available codecs:
//   - String: values stored as is
//   - Int: base-10 integers
//   - JSON: any JSON-encodable type
package codec
