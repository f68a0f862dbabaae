package tprf

import (
	"errors"
	"fmt"
	"sync"

	"github.com/luxfi/tprf/pkg/combinatorics"
	"github.com/luxfi/tprf/pkg/field"
	"github.com/luxfi/tprf/pkg/party"
	"github.com/luxfi/tprf/pkg/perr"
	"github.com/luxfi/tprf/pkg/prf"
	"github.com/luxfi/tprf/pkg/seal"
	"github.com/luxfi/tprf/pkg/suite"
	"github.com/luxfi/tprf/pkg/wire"
	"golang.org/x/sync/errgroup"
)

// Server is the single server party of spec §3: it holds the outer share
// S_s, system parameters, the active/revoked membership set, and the sealed
// verifier used as the pass/fail oracle (spec §4.5).
type Server struct {
	mu sync.RWMutex

	id         party.ID
	params     Params
	suite      suite.Suite
	table      *combinatorics.Table
	ss         field.Vector
	verifier   seal.Verifier
	registered bool
	active     map[party.ID]bool
	devices    map[party.ID]*Device
	observer   Observer
}

// NewServer builds an unregistered server for the given parameters. Its
// party ID is always the largest in {1..T} (spec §9: "server always
// appended as largest-ID group member").
func NewServer(params Params, s suite.Suite, observer Observer) *Server {
	return &Server{
		id:       party.Server(params.T),
		params:   params,
		suite:    s,
		table:    combinatorics.NewTable(),
		active:   make(map[party.ID]bool),
		observer: observerOrNoop(observer),
	}
}

// bindDevices gives the server direct query access to the device roster, so
// it can independently re-collect each chosen device's partial evaluation at
// verification time instead of trusting values relayed by the User (spec
// §4.6 Verification step 4: "Server ... collects device betas ... reconstructs
// rw' ... attempts to unseal"; the decision belongs to the Server, not the
// User).
func (s *Server) bindDevices(devices map[party.ID]*Device) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices = devices
}

// ID returns the server's party identifier.
func (s *Server) ID() party.ID {
	return s.id
}

// IsActive reports whether device id is currently unrevoked.
func (s *Server) IsActive(id party.ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active[id]
}

// ActiveDevices returns the sorted list of currently unrevoked device IDs.
func (s *Server) ActiveDevices() party.IDSlice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out party.IDSlice
	for id, ok := range s.active {
		if ok {
			out = append(out, id)
		}
	}
	return out.Sorted()
}

// RevokedDevices returns the sorted list of currently revoked device IDs.
func (s *Server) RevokedDevices() party.IDSlice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out party.IDSlice
	for id, ok := range s.active {
		if !ok {
			out = append(out, id)
		}
	}
	return out.Sorted()
}

// Status reports the server's membership view in one call (spec §6
// status/status_response): the sorted active and revoked device ID lists.
func (s *Server) Status() (active, revoked party.IDSlice) {
	return s.ActiveDevices(), s.RevokedDevices()
}

// HandleRegisterServer stores the outer share S_s and initializes every
// device to active (spec §6 register_server).
func (s *Server) HandleRegisterServer(ss field.Vector) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ss = ss
	for id := party.ID(1); id < s.id; id++ {
		s.active[id] = true
	}
	return nil
}

// HandleStoreCipher stores the sealed verifier produced at registration
// (spec §6 store_cipher). The server must not accept a server_verification
// before this has been called (spec §5 serialization requirement).
func (s *Server) HandleStoreCipher(v seal.Verifier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifier = v
	s.registered = true
	return nil
}

// HandleVerificationRequest computes the server's own partial PRF
// evaluation, exactly like a device except the server never refuses on
// revocation (it is never itself revoked).
func (s *Server) HandleVerificationRequest(g uint64, alphaVec field.Vector, session2 []byte) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ss == nil {
		return 0, perr.New(perr.NotRegistered, "server has no outer share")
	}
	mod := field.NewModulus(s.params.Q)
	h2 := s.suite.HashToField(mod, "session2", session2)
	return prf.PartialEval(alphaVec, s.ss, h2, s.params.Q, s.params.Q1), nil
}

// HandleServerVerification independently reconstructs rw' and attempts to
// unseal the verifier under it (spec §4.6 Verification step 4 / §6
// server_verification-verification_result): it computes its own beta_T,
// re-queries every chosen device directly for its beta rather than trusting
// a value relayed by the User, reconstructs via prf.Reconstruct, and only
// then checks seal.Unseal. This is the system's actual pass/fail decision;
// the User's role is limited to sampling session2 and deriving alpha.
func (s *Server) HandleServerVerification(g uint64, alphaVec field.Vector, session2 []byte, chosenDevices party.IDSlice) (bool, error) {
	s.mu.RLock()
	if !s.registered {
		s.mu.RUnlock()
		return false, perr.New(perr.NotRegistered, "server has no stored verifier")
	}
	verifier := s.verifier
	devices := s.devices
	s.mu.RUnlock()

	members, err := s.table.Unrank(g, s.params.Threshold, s.params.T)
	if err != nil {
		return false, perr.Wrap(perr.InvalidParameter, "unrank verification group", err)
	}

	// Each member, including the server's own seat, is queried through the
	// same HandleVerificationRequest entry point a device exposes: the
	// server's own RLock above has already been released, so this self-query
	// reacquires it independently instead of recursing on it.
	betas := make([]uint64, len(members))
	eg := new(errgroup.Group)
	for i, m := range members {
		i, m := i, m
		eg.Go(func() error {
			if m == s.id {
				beta, err := s.HandleVerificationRequest(g, alphaVec, session2)
				if err != nil {
					return err
				}
				betas[i] = beta
				return nil
			}
			dev, ok := devices[m]
			if !ok {
				return perr.New(perr.InvalidParameter, fmt.Sprintf("unknown device %d", m))
			}
			beta, err := s.queryDevice(dev, g, alphaVec, session2)
			if err != nil {
				return err
			}
			betas[i] = beta
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		var perrErr *perr.Error
		if errors.As(err, &perrErr) && perrErr.Kind == perr.DeviceRevoked {
			return false, perr.Wrap(perr.InsufficientQuorum, "chosen device is revoked", err)
		}
		return false, err
	}

	rw := prf.Reconstruct(betas, s.params.Q1, s.params.P)
	if !seal.Unseal(s.suite, rw, verifier) {
		return false, perr.New(perr.VerificationMismatch, fmt.Sprintf("unseal failed for devices %v", chosenDevices))
	}
	return true, nil
}

// queryDevice round-trips a verification_request/verification_response pair
// (spec §6) through the wire codec before dispatching to dev. This system's
// Non-goals exclude a real socket transport, but the message schema itself
// is what a socket transport would carry, so the server still serializes
// each outgoing request and the device's response through it rather than
// calling across the in-process boundary with bare Go values.
func (s *Server) queryDevice(dev *Device, g uint64, alphaVec field.Vector, session2 []byte) (uint64, error) {
	reqEnv, err := wire.Encode(wire.KindVerificationRequest, s.id, dev.ID(), wire.VerificationRequest{
		Session2: session2,
		Alpha:    wire.ToVectorMap(alphaVec),
	})
	if err != nil {
		return 0, perr.Wrap(perr.TransportFailure, "encode verification_request", err)
	}
	reqLine, err := reqEnv.Marshal()
	if err != nil {
		return 0, perr.Wrap(perr.TransportFailure, "marshal verification_request", err)
	}

	reqRecv, err := wire.Unmarshal(reqLine)
	if err != nil {
		return 0, perr.Wrap(perr.TransportFailure, "unmarshal verification_request", err)
	}
	var req wire.VerificationRequest
	if err := reqRecv.Decode(&req); err != nil {
		return 0, perr.Wrap(perr.TransportFailure, "decode verification_request", err)
	}
	mod := field.NewModulus(s.params.Q)
	alphaIn := wire.FromVectorMap(mod, s.params.N, req.Alpha)

	beta, devErr := dev.HandleVerificationRequest(g, alphaIn, req.Session2)
	resp := wire.VerificationResponse{}
	if devErr != nil {
		resp.Error = devErr.Error()
		var perrErr *perr.Error
		if errors.As(devErr, &perrErr) {
			resp.ErrorKind = string(perrErr.Kind)
		}
	} else {
		resp.Beta = &beta
	}

	respEnv, err := wire.Encode(wire.KindVerificationResp, dev.ID(), s.id, resp)
	if err != nil {
		return 0, perr.Wrap(perr.TransportFailure, "encode verification_response", err)
	}
	respLine, err := respEnv.Marshal()
	if err != nil {
		return 0, perr.Wrap(perr.TransportFailure, "marshal verification_response", err)
	}
	respRecv, err := wire.Unmarshal(respLine)
	if err != nil {
		return 0, perr.Wrap(perr.TransportFailure, "unmarshal verification_response", err)
	}
	var out wire.VerificationResponse
	if err := respRecv.Decode(&out); err != nil {
		return 0, perr.Wrap(perr.TransportFailure, "decode verification_response", err)
	}
	if out.Error != "" {
		if out.ErrorKind != "" {
			return 0, perr.New(perr.Kind(out.ErrorKind), out.Error)
		}
		return 0, perr.New(perr.TransportFailure, out.Error)
	}
	if out.Beta == nil {
		return 0, perr.New(perr.TransportFailure, "verification_response missing beta")
	}
	return *out.Beta, nil
}

// HandleRevokeDevices rotates the server's outer share by the scalar
// derived from session1, flips the membership flag for every ID in
// revoked, and reseals the verifier under the caller-supplied rotated rw
// (spec §4.6 Key-Update step 4, §4.7).
func (s *Server) HandleRevokeDevices(session1 []byte, revoked []party.ID, newRw uint64) (field.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.registered {
		return field.Element{}, perr.New(perr.NotRegistered, "server has no registration state")
	}
	mod := field.NewModulus(s.params.Q)
	sigma := sessionScalar(s.suite, mod, session1)
	s.ss = s.ss.Scale(sigma)

	for _, id := range revoked {
		if _, ok := s.active[id]; ok {
			s.active[id] = false
		}
	}

	v, err := seal.Seal(s.suite, newRw)
	if err != nil {
		return field.Element{}, perr.Wrap(perr.TransportFailure, "reseal after rotation", err)
	}
	s.verifier = v
	return sigma, nil
}
