// Package signature builds the signed parameter set required by every OpenBGE
// platform request.
package signature

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"math/rand"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Wire names of the signature fields
const (
	FieldAppKey    = "app_key"
	FieldTimestamp = "timestamp"
	FieldNonce     = "signature_nonce"
	FieldSign      = "sign"
)

// TimestampLayout is ISO-8601 in UTC without fractional seconds
const TimestampLayout = "2006-01-02T15:04:05Z"

// signPrefix is prepended to the encoded canonical string. The platform expects it
// verbatim.
const signPrefix = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ&"

const (
	nonceLength   = 8
	nonceAlphabet = "0123456789abcdefghijklmn"
)

// Params holds business parameters of a single request
type Params map[string]string

// Signed is the signature output for one request
type Signed struct {
	AppKey    string `json:"app_key"`
	Nonce     string `json:"signature_nonce"`
	Timestamp string `json:"timestamp"`
	Sign      string `json:"sign"`
}

// Merge returns the unencoded wire form: the business params plus the four
// signature fields. The input map is not modified.
func (s Signed) Merge(params Params) url.Values {
	values := make(url.Values, len(params)+4)
	for k, v := range params {
		values.Set(k, v)
	}
	values.Set(FieldAppKey, s.AppKey)
	values.Set(FieldNonce, s.Nonce)
	values.Set(FieldTimestamp, s.Timestamp)
	values.Set(FieldSign, s.Sign)
	return values
}

// Signer computes request signatures for one key/secret pair
type Signer struct {
	key    string
	secret string
	now    func() time.Time
	nonce  func() string
}

// Option configures a Signer
type Option func(*Signer)

// WithClock overrides the time source used for the timestamp field
func WithClock(now func() time.Time) Option {
	return func(s *Signer) {
		s.now = now
	}
}

// WithNonce overrides the nonce generator
func WithNonce(nonce func() string) Option {
	return func(s *Signer) {
		s.nonce = nonce
	}
}

// NewSigner creates a signer for the given application key and secret
func NewSigner(key, secret string, opts ...Option) *Signer {
	s := &Signer{
		key:    key,
		secret: secret,
		now:    time.Now,
		nonce:  RandomNonce,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sign generates a fresh timestamp and nonce and signs the given params.
// A nil params map signs only the protocol fields.
func (s *Signer) Sign(params Params) Signed {
	timestamp := FormatTimestamp(s.now())
	nonce := s.nonce()

	return Signed{
		AppKey:    s.key,
		Nonce:     nonce,
		Timestamp: timestamp,
		Sign:      s.compute(StringToSign(s.key, timestamp, nonce, params)),
	}
}

func (s *Signer) compute(stringToSign string) string {
	mac := hmac.New(sha1.New, []byte(s.secret+"&"))
	mac.Write([]byte(stringToSign))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// StringToSign builds the canonical string that gets HMACed.
func StringToSign(key, timestamp, nonce string, params Params) string {
	tokens := make([]string, 0, len(params)+3)
	tokens = append(tokens,
		FieldAppKey+"="+Escape(key),
		FieldTimestamp+"="+Escape(timestamp),
		FieldNonce+"="+Escape(nonce),
	)
	for k, v := range params {
		tokens = append(tokens, Escape(k)+"="+Escape(v))
	}

	// byte-order sort on the encoded tokens
	sort.Strings(tokens)

	return signPrefix + Escape(strings.Join(tokens, "&"))
}

// Escape percent-encodes s per RFC 3986: only A-Z a-z 0-9 - _ . ~ stay literal,
// space becomes %20 and * becomes %2A.
func Escape(s string) string {
	escaped := url.QueryEscape(s)
	escaped = strings.ReplaceAll(escaped, "+", "%20")
	escaped = strings.ReplaceAll(escaped, "*", "%2A")
	return strings.ReplaceAll(escaped, "%7E", "~")
}

// FormatTimestamp renders t in the platform's timestamp format
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// RandomNonce returns an 8 character base-24 token. It is not
// cryptographically strong.
func RandomNonce() string {
	b := make([]byte, nonceLength)
	for i := range b {
		b[i] = nonceAlphabet[rand.Intn(len(nonceAlphabet))]
	}
	return string(b)
}
