// internal/writer/builder.go
package writer

import (
	"errors"
	"fmt"
	"time"

	cfg "github.com/tamzrod/asicreg/internal/config"
	"github.com/tamzrod/asicreg/internal/writer/ingest"
	wmodbus "github.com/tamzrod/asicreg/internal/writer/modbus"
)

// ClientKey identifies one connection in the client map.
func ClientKey(transport, endpoint string) string {
	if transport == "" {
		transport = cfg.TransportModbus
	}
	return transport + "://" + endpoint
}

// BuildPlan converts one unit config into a Writer Plan.
// Assumes config has already passed conflict validation.
func BuildPlan(u cfg.UnitConfig) (Plan, error) {
	if u.ID == "" {
		return Plan{}, errors.New("writer: unit.id required")
	}

	plan := Plan{UnitID: u.ID}

	for _, t := range u.Targets {
		plan.Targets = append(plan.Targets, TargetEndpoint{
			Key:      ClientKey(t.Transport, t.Endpoint),
			Endpoint: t.Endpoint,
			UnitID:   t.UnitID,
			Address:  t.Address,
		})
	}

	if s := u.Status; s != nil {
		plan.Status = &StatusPlan{
			Key:        ClientKey(s.Transport, s.Endpoint),
			Endpoint:   s.Endpoint,
			UnitID:     s.UnitID,
			BaseSlot:   s.Slot,
			DeviceName: s.DeviceName,
		}
	}

	return plan, nil
}

type endpointSpec struct {
	transport string
	endpoint  string
	timeout   time.Duration
}

// closer is implemented by every concrete endpoint client.
type closer interface {
	endpointClient
	Close() error
}

// dial opens one endpoint client. Replaced in tests.
var dial = func(transport, endpoint string, timeout time.Duration) (closer, error) {
	switch transport {
	case cfg.TransportIngest:
		return ingest.New(endpoint, timeout)
	case cfg.TransportModbus, "":
		return wmodbus.Dial(endpoint, timeout)
	}
	return nil, fmt.Errorf("writer: unknown transport %q", transport)
}

// BuildEndpointClients creates one client per unique transport and endpoint
// of a unit, status endpoint included.
func BuildEndpointClients(u cfg.UnitConfig) (map[string]endpointClient, func() error, error) {
	unique := map[string]endpointSpec{}
	for _, t := range u.Targets {
		unique[ClientKey(t.Transport, t.Endpoint)] = endpointSpec{
			transport: t.Transport,
			endpoint:  t.Endpoint,
			timeout:   time.Duration(t.TimeoutMs) * time.Millisecond,
		}
	}
	if s := u.Status; s != nil {
		key := ClientKey(s.Transport, s.Endpoint)
		if _, ok := unique[key]; !ok {
			unique[key] = endpointSpec{
				transport: s.Transport,
				endpoint:  s.Endpoint,
				timeout:   time.Duration(s.TimeoutMs) * time.Millisecond,
			}
		}
	}

	clients := make(map[string]endpointClient)
	var closers []func() error

	for key, spec := range unique {
		c, err := dial(spec.transport, spec.endpoint, spec.timeout)
		if err != nil {
			for _, fn := range closers {
				_ = fn()
			}
			return nil, nil, err
		}
		clients[key] = c
		closers = append(closers, c.Close)
	}

	closeAll := func() error {
		var last error
		for _, fn := range closers {
			if err := fn(); err != nil {
				last = err
			}
		}
		return last
	}

	return clients, closeAll, nil
}
