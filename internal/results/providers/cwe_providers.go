// internal/results/providers/cwe_providers.go
package providers

import (
	"context"
)

// CWEEntry holds details about a specific CWE.
type CWEEntry struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// InMemoryCWEProvider resolves CWE IDs against a small built-in catalog of
// the weaknesses cloud configuration findings are classified under.
type InMemoryCWEProvider struct {
	data map[string]CWEEntry
}

// NewInMemoryCWEProvider creates a new InMemoryCWEProvider with preloaded data.
func NewInMemoryCWEProvider() *InMemoryCWEProvider {
	data := map[string]CWEEntry{
		"CWE-16":   {ID: "CWE-16", Name: "Configuration", Description: "Weaknesses introduced during the configuration of the software or its environment."},
		"CWE-284":  {ID: "CWE-284", Name: "Improper Access Control", Description: "The product does not restrict or incorrectly restricts access to a resource from an unauthorized actor."},
		"CWE-311":  {ID: "CWE-311", Name: "Missing Encryption of Sensitive Data", Description: "The product does not encrypt sensitive or critical information before storage or transmission."},
		"CWE-732":  {ID: "CWE-732", Name: "Incorrect Permission Assignment for Critical Resource", Description: "The product specifies permissions for a security-critical resource in a way that allows that resource to be read or modified by unintended actors."},
		"CWE-778":  {ID: "CWE-778", Name: "Insufficient Logging", Description: "When a security-critical event occurs, the product either does not record the event or omits important details about the event when logging it."},
		"CWE-1032": {ID: "CWE-1032", Name: "OWASP Top Ten 2017 Category A6 - Security Misconfiguration", Description: "Weaknesses in this category are related to the A6 category in the OWASP Top Ten 2017."},
	}
	return &InMemoryCWEProvider{data: data}
}

// GetCWE returns the catalog entry for id.
func (p *InMemoryCWEProvider) GetCWE(id string) (CWEEntry, bool) {
	entry, ok := p.data[id]
	return entry, ok
}

// GetFullName returns the name of the CWE, or false when it is not in the catalog.
func (p *InMemoryCWEProvider) GetFullName(ctx context.Context, id string) (string, bool) {
	if ctx.Err() != nil {
		return "", false
	}
	entry, ok := p.data[id]
	if !ok {
		return "", false
	}
	return entry.Name, true
}
