package tprf

import (
	"fmt"
	"sync"

	"github.com/luxfi/tprf/pkg/field"
	"github.com/luxfi/tprf/pkg/party"
	"github.com/luxfi/tprf/pkg/perr"
	"github.com/luxfi/tprf/pkg/prf"
	"github.com/luxfi/tprf/pkg/suite"
)

// Device is one of the T-1 device parties of spec §3: it holds a persistent
// share set {R[id][*]} keyed by group_id, a revoked flag, and the session
// scalar last applied by rotation.
type Device struct {
	mu sync.RWMutex

	id       party.ID
	params   Params
	suite    suite.Suite
	shares   map[uint64]field.Vector
	revoked  bool
	lastSig  field.Element
	observer Observer
}

// NewDevice builds an unregistered device with the given identity.
func NewDevice(id party.ID, params Params, s suite.Suite, observer Observer) *Device {
	return &Device{
		id:       id,
		params:   params,
		suite:    s,
		shares:   make(map[uint64]field.Vector),
		observer: observerOrNoop(observer),
	}
}

// ID returns the device's party identifier.
func (d *Device) ID() party.ID {
	return d.id
}

// Revoked reports whether a prior key-update revoked this device.
func (d *Device) Revoked() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.revoked
}

// HandleRegisterDevice stores the shares the User dispersed to this device
// at registration (spec §6 register_device).
func (d *Device) HandleRegisterDevice(shares map[uint64]field.Vector) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shares = shares
	return nil
}

// HandleVerificationRequest computes this device's partial PRF evaluation
// for group g (spec §4.4), given the blinded alpha vector and session2. A
// revoked device refuses with perr.DeviceRevoked (spec §7).
func (d *Device) HandleVerificationRequest(g uint64, alphaVec field.Vector, session2 []byte) (uint64, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.revoked {
		return 0, perr.New(perr.DeviceRevoked, fmt.Sprintf("device %d is revoked", d.id))
	}
	share, ok := d.shares[g]
	if !ok {
		return 0, perr.New(perr.NotRegistered, fmt.Sprintf("device %d holds no share for group %d", d.id, g))
	}
	mod := field.NewModulus(d.params.Q)
	h2 := d.suite.HashToField(mod, "session2", session2)
	return prf.PartialEval(alphaVec, share, h2, d.params.Q, d.params.Q1), nil
}

// HandleKeyUpdate multiplies every held share by the scalar derived from
// raw (spec §4.7). raw equal to the literal sentinel "1" both scales by the
// field identity and marks the device revoked; any other payload rotates
// the device's shares and leaves its membership untouched.
func (d *Device) HandleKeyUpdate(raw []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	mod := field.NewModulus(d.params.Q)
	sigma := sessionScalar(d.suite, mod, raw)
	for g, v := range d.shares {
		d.shares[g] = v.Scale(sigma)
	}
	d.lastSig = sigma
	if isRevocationSentinel(raw) {
		d.revoked = true
	}
	return nil
}

// HandleSendUpdatedShare acknowledges the server's rotation-complete signal
// (spec §6 send_updated_share). It carries no payload; this system's devices
// have nothing further to do on receipt.
func (d *Device) HandleSendUpdatedShare() error {
	return nil
}
