package base

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes.
// The version suffix allows a future algorithm migration.
const (
	DomainValue      = "dpvalidate/value/v1"
	DomainProperties = "dpvalidate/properties/v1"
	DomainGraph      = "dpvalidate/graph/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data) as lowercase hex.
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ValueHash returns the content hash of a value.
func ValueHash(v Value) (string, error) {
	doc, err := ValueDocument(v)
	if err != nil {
		return "", fmt.Errorf("ValueHash: %w", err)
	}
	canonical, err := MarshalCanonical(doc)
	if err != nil {
		return "", fmt.Errorf("ValueHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainValue, canonical), nil
}

// PropertiesHash returns the content hash of properties.
// Identical properties always hash identically, so the ledger can detect
// drift between runs of the same graph.
func PropertiesHash(p ValueProperties) (string, error) {
	canonical, err := CanonicalProperties(p)
	if err != nil {
		return "", fmt.Errorf("PropertiesHash: %w", err)
	}
	return hashWithDomain(DomainProperties, canonical), nil
}

// GraphHash returns the content hash of a compiled graph.
func GraphHash(g *GraphSpec) (string, error) {
	doc, err := GraphDocument(g)
	if err != nil {
		return "", fmt.Errorf("GraphHash: %w", err)
	}
	canonical, err := MarshalCanonical(doc)
	if err != nil {
		return "", fmt.Errorf("GraphHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainGraph, canonical), nil
}

// MustPropertiesHash is like PropertiesHash but panics on error.
// Use only in tests or with known-valid input.
func MustPropertiesHash(p ValueProperties) string {
	h, err := PropertiesHash(p)
	if err != nil {
		panic(err)
	}
	return h
}

// CanonicalProperties returns the canonical JSON encoding of properties.
func CanonicalProperties(p ValueProperties) ([]byte, error) {
	doc, err := PropertiesDocument(p)
	if err != nil {
		return nil, err
	}
	return MarshalCanonical(doc)
}

// GraphDocument converts a graph to a JSON-shaped document. Node order does
// not affect the result.
func GraphDocument(g *GraphSpec) (map[string]any, error) {
	nodes := make(map[string]any, len(g.Nodes))
	for _, id := range g.SortedIDs() {
		n := g.Nodes[id]
		doc := map[string]any{
			"component":  n.Component,
			"params":     stringMap(n.Params),
			"args":       stringMap(n.Args),
			"value":      nil,
			"properties": nil,
		}
		if n.Value != nil {
			v, err := ValueDocument(n.Value)
			if err != nil {
				return nil, fmt.Errorf("node %s: %w", id, err)
			}
			doc["value"] = v
		}
		if n.Properties != nil {
			p, err := PropertiesDocument(n.Properties)
			if err != nil {
				return nil, fmt.Errorf("node %s: %w", id, err)
			}
			doc["properties"] = p
		}
		nodes[id] = doc
	}
	return map[string]any{"name": g.Name, "nodes": nodes}, nil
}

func stringMap(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// MarshalJSON renders properties as canonical JSON.
func (p *ArrayProperties) MarshalJSON() ([]byte, error) { return CanonicalProperties(p) }

// MarshalJSON renders properties as canonical JSON.
func (p *JaggedProperties) MarshalJSON() ([]byte, error) { return CanonicalProperties(p) }

// MarshalJSON renders properties as canonical JSON.
func (p *HashmapProperties) MarshalJSON() ([]byte, error) { return CanonicalProperties(p) }
