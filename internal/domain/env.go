package domain

import (
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// EnvVar is one environment variable handed to the tool.
type EnvVar struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// EnvSet is an ordered set of environment variables. Setting an existing
// name replaces its value in place.
type EnvSet []EnvVar

// Set adds or replaces name.
func (e *EnvSet) Set(name, value string) {
	for i := range *e {
		if (*e)[i].Name == name {
			(*e)[i].Value = value
			return
		}
	}
	*e = append(*e, EnvVar{Name: name, Value: value})
}

// Get returns the value of name and whether it is set.
func (e EnvSet) Get(name string) (string, bool) {
	for _, v := range e {
		if v.Name == name {
			return v.Value, true
		}
	}
	return "", false
}

// Names lists the variable names in insertion order.
func (e EnvSet) Names() []string {
	names := make([]string, len(e))
	for i, v := range e {
		names[i] = v.Name
	}
	return names
}

// Environ formats the set as NAME=value pairs for os/exec.
func (e EnvSet) Environ() []string {
	out := make([]string, len(e))
	for i, v := range e {
		out[i] = v.Name + "=" + v.Value
	}
	return out
}

// Copyable renders the set as a single shell line that can be pasted to
// reproduce the environment by hand.
func (e EnvSet) Copyable() string {
	parts := make([]string, len(e))
	for i, v := range e {
		parts[i] = "export " + v.Name + "=" + shellQuote(v.Value) + ";"
	}
	return strings.Join(parts, " ")
}

// shellQuote quotes s for bash. Values bash cannot represent, such as
// strings holding NUL bytes, fall back to Go quoting.
func shellQuote(s string) string {
	q, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		return strconv.Quote(s)
	}
	return q
}

// BoolFlag renders b the way MET config files expect booleans.
func BoolFlag(b bool) string {
	return strings.ToUpper(strconv.FormatBool(b))
}
