package request

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"

	"github.com/klauspost/compress/gzip"
	"github.com/tidwall/gjson"
)

var ErrDecode = errors.New("decode failure")

var gzipMagic = []byte{0x1f, 0x8b}

// DecodePayload parses raw into v. raw is either a JSON document or the base64 of a gzip
// compressed JSON document.
func DecodePayload(raw string, v interface{}) error {
	doc, err := payloadDocument(raw)
	if err != nil {
		return err
	}
	if err = json.Unmarshal(doc, v); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

func payloadDocument(raw string) ([]byte, error) {
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || !bytes.HasPrefix(decoded, gzipMagic) {
		return []byte(raw), nil
	}

	zr, err := gzip.NewReader(bytes.NewReader(decoded))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	defer zr.Close()

	doc, err := ioutil.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return doc, nil
}

// EncodePayload produces the compressed transfer form of v.
func EncodePayload(v interface{}) (string, error) {
	doc, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err = zw.Write(doc); err != nil {
		return "", err
	}
	if err = zw.Close(); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// firstParam extracts the payload string a request carries: params[0] for an array, the
// string itself, or the raw JSON of an object.
func firstParam(params json.RawMessage) (string, error) {
	p := gjson.ParseBytes(params)
	if p.IsArray() {
		p = p.Get("0")
	}
	switch {
	case p.Type == gjson.String:
		return p.Str, nil
	case p.IsObject():
		return p.Raw, nil
	}
	return "", fmt.Errorf("%w: missing payload", ErrDecode)
}
