package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// JobParameters holds the parameters a job was launched with.
type JobParameters map[string]interface{}

// NewJobParameters returns an empty parameter set.
func NewJobParameters() JobParameters {
	return make(JobParameters)
}

// Put stores a parameter.
func (jp JobParameters) Put(key string, value interface{}) {
	jp[key] = value
}

// GetString retrieves a string parameter.
func (jp JobParameters) GetString(key string) (string, bool) {
	v, ok := jp[key].(string)
	return v, ok
}

// String renders the parameters in key order.
func (jp JobParameters) String() string {
	keys := make([]string, 0, len(jp))
	for k := range jp {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, jp[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Value implements driver.Valuer.
func (jp JobParameters) Value() (driver.Value, error) {
	if jp == nil {
		return "{}", nil
	}
	data, err := json.Marshal(jp)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (jp *JobParameters) Scan(value interface{}) error {
	*jp = make(JobParameters)
	b, err := scanBytes(value)
	if err != nil {
		return fmt.Errorf("unsupported Scan type for JobParameters: %w", err)
	}
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, jp)
}

// FailureList records failure messages of an execution.
type FailureList []string

// Value implements driver.Valuer.
func (fl FailureList) Value() (driver.Value, error) {
	if fl == nil {
		return "[]", nil
	}
	data, err := json.Marshal(fl)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (fl *FailureList) Scan(value interface{}) error {
	*fl = FailureList{}
	b, err := scanBytes(value)
	if err != nil {
		return fmt.Errorf("unsupported Scan type for FailureList: %w", err)
	}
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, fl)
}
