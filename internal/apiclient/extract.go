package apiclient

import (
	"encoding/json"
	"fmt"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
)

// Extractor pulls single string fields out of JSON bodies with JMESPath
// expressions, so the token and message locations are configurable.
type Extractor struct {
	token   jmespath.JMESPath
	message jmespath.JMESPath
}

// NewExtractor compiles both expressions once.
func NewExtractor(tokenPath, messagePath string) (*Extractor, error) {
	tokenPath = strings.TrimSpace(tokenPath)
	messagePath = strings.TrimSpace(messagePath)
	if tokenPath == "" {
		tokenPath = "accessToken"
	}
	if messagePath == "" {
		messagePath = "message"
	}
	token, err := compileExpr(tokenPath)
	if err != nil {
		return nil, err
	}
	message, err := compileExpr(messagePath)
	if err != nil {
		return nil, err
	}
	return &Extractor{token: token, message: message}, nil
}

func compileExpr(expr string) (jmespath.JMESPath, error) {
	compiled, err := jmespath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile jmespath %q: %w", expr, err)
	}
	return compiled, nil
}

// Token returns the bearer token from a login response, or "" when absent.
func (e *Extractor) Token(body []byte) string {
	return lookup(e.token, body)
}

// Message returns the error message from a failure body, or "" when the body
// is not JSON or has no string at the configured path.
func (e *Extractor) Message(body []byte) string {
	return lookup(e.message, body)
}

func lookup(expr jmespath.JMESPath, body []byte) string {
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return ""
	}
	result, err := expr.Search(data)
	if err != nil {
		return ""
	}
	s, ok := result.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}
