// SPDX-FileCopyrightText: Copyright 2025 Operandi Technologies
// SPDX-License-Identifier: Apache-2.0

// Package ports parses port publishing specifications and derives the
// exposed-port and host-binding structures used at container creation.
package ports

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/docker/go-connections/nat"
)

// DefaultHostIP is the address host ports are bound on.
const DefaultHostIP = "0.0.0.0"

// Mapping publishes a container port on a host port.
type Mapping struct {
	HostPort      string
	ContainerPort string
}

// String renders the mapping in "host:container" form.
func (m Mapping) String() string {
	return m.HostPort + ":" + m.ContainerPort
}

// Parse parses a "<hostPort>:<containerPort>" specification.
func Parse(spec string) (Mapping, error) {
	host, ctr, ok := strings.Cut(strings.TrimSpace(spec), ":")
	if !ok {
		return Mapping{}, fmt.Errorf("invalid port mapping %q: expected <hostPort>:<containerPort>", spec)
	}
	return FromPair(host, ctr)
}

// FromPair builds a mapping from an explicit (hostPort, containerPort) pair.
// Ports may be given as strings or integers.
func FromPair(hostPort, containerPort any) (Mapping, error) {
	host, err := portString(hostPort)
	if err != nil {
		return Mapping{}, fmt.Errorf("invalid host port: %w", err)
	}
	ctr, err := portString(containerPort)
	if err != nil {
		return Mapping{}, fmt.Errorf("invalid container port: %w", err)
	}
	return Mapping{HostPort: host, ContainerPort: ctr}, nil
}

// ParseAll parses a list of "<hostPort>:<containerPort>" specifications.
func ParseAll(specs []string) ([]Mapping, error) {
	mappings := make([]Mapping, 0, len(specs))
	for _, spec := range specs {
		m, err := Parse(spec)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}
	return mappings, nil
}

func portString(v any) (string, error) {
	var s string
	switch p := v.(type) {
	case string:
		s = strings.TrimSpace(p)
	case int:
		s = strconv.Itoa(p)
	case uint16:
		s = strconv.Itoa(int(p))
	default:
		return "", fmt.Errorf("unsupported port type %T", v)
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return "", fmt.Errorf("%q is not a number", s)
	}
	if n < 0 || n > 65535 {
		return "", fmt.Errorf("%d is out of range", n)
	}
	return s, nil
}

// Derive computes the exposed ports and host bindings for mappings. Each
// mapping yields one entry in each map, keyed "<containerPort>/tcp". A later
// mapping for the same container port replaces an earlier one.
func Derive(mappings []Mapping) (nat.PortSet, nat.PortMap, error) {
	exposed := nat.PortSet{}
	bindings := nat.PortMap{}

	for _, m := range mappings {
		port, err := nat.NewPort("tcp", m.ContainerPort)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse port %s: %w", m, err)
		}
		exposed[port] = struct{}{}
		bindings[port] = []nat.PortBinding{{
			HostIP:   DefaultHostIP,
			HostPort: m.HostPort,
		}}
	}

	return exposed, bindings, nil
}
