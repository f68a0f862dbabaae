package tprf

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/luxfi/tprf/pkg/combinatorics"
	"github.com/luxfi/tprf/pkg/field"
	"github.com/luxfi/tprf/pkg/party"
	"github.com/luxfi/tprf/pkg/perr"
	"github.com/luxfi/tprf/pkg/prf"
	"github.com/luxfi/tprf/pkg/seal"
	"github.com/luxfi/tprf/pkg/sharing"
	"github.com/luxfi/tprf/pkg/suite"
)

// User is the orchestrating role of spec §4.6: it drives Registration,
// Verification and Key-Update against a Server and a fixed set of Devices.
// This is a single-process simulation harness (spec Non-goals exclude
// concurrent multi-user state and a real transport), so User holds direct
// references to its peers rather than a network client.
type User struct {
	mu sync.Mutex

	params Params
	suite  suite.Suite
	table  *combinatorics.Table
	rand   io.Reader

	server  *Server
	devices map[party.ID]*Device

	pw string
	s  field.Vector

	observer Observer
}

// NewUser builds a User bound to a server and a fixed device roster. rand
// supplies entropy for secret generation and dispersion; a nil rand defaults
// to the suite's own reader.
func NewUser(params Params, s suite.Suite, server *Server, devices []*Device, rand io.Reader, observer Observer) *User {
	m := make(map[party.ID]*Device, len(devices))
	for _, d := range devices {
		m[d.ID()] = d
	}
	if rand == nil {
		rand = s.Reader()
	}
	return &User{
		params:   params,
		suite:    s,
		table:    combinatorics.NewTable(),
		rand:     rand,
		server:   server,
		devices:  m,
		observer: observerOrNoop(observer),
	}
}

func (u *User) mod() *field.Modulus {
	return field.NewModulus(u.params.Q)
}

// hpw returns the single F_q scalar H(pw), per spec §3: the hash of the
// password is a broadcastable scalar, never a per-component vector.
func (u *User) hpw() field.Element {
	return u.suite.HashToField(u.mod(), "password", []byte(u.pw))
}

// Register runs the one-time Registration phase of spec §4.6: sample S,
// split and disperse it, push shares to every device and the outer share to
// the server, then seal the verifier under rw.
func (u *User) Register(pw string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.observer.OnPhaseStart("registration")
	err := u.register(pw)
	u.observer.OnPhaseEnd("registration", err)
	return err
}

func (u *User) register(pw string) error {
	if err := u.params.Validate(); err != nil {
		return err
	}
	u.pw = pw

	mod := u.mod()
	s, err := field.RandVector(mod, u.params.N, u.rand)
	if err != nil {
		return perr.Wrap(perr.InvalidParameter, "sample master secret", err)
	}
	u.s = s

	sd, ss, err := sharing.Split(s, u.rand)
	if err != nil {
		return perr.Wrap(perr.InvalidParameter, "split master secret", err)
	}

	repo := sharing.NewRepository(mod, u.params.N, u.params.Threshold, u.params.T, u.table)
	if err := repo.Disperse(sd, ss, u.rand); err != nil {
		return perr.Wrap(perr.InvalidParameter, "disperse device shares", err)
	}

	count := repo.GroupCount()
	for id, dev := range u.devices {
		shares := make(map[uint64]field.Vector, count)
		for g := uint64(1); g <= count; g++ {
			if share, ok := repo.ShareOf(id, g); ok {
				shares[g] = share
			}
		}
		if err := dev.HandleRegisterDevice(shares); err != nil {
			return perr.Wrap(perr.TransportFailure, fmt.Sprintf("register device %d", id), err)
		}
	}

	if err := u.server.HandleRegisterServer(ss); err != nil {
		return perr.Wrap(perr.TransportFailure, "register server", err)
	}
	u.server.bindDevices(u.devices)

	rw := prf.DirectEval(field.Broadcast(u.hpw(), u.params.N), s, u.params.Q, u.params.Q1, u.params.P)
	v, err := seal.Seal(u.suite, rw)
	if err != nil {
		return perr.Wrap(perr.TransportFailure, "seal verifier", err)
	}
	if err := u.server.HandleStoreCipher(v); err != nil {
		return perr.Wrap(perr.TransportFailure, "store cipher", err)
	}
	return nil
}

// Verify runs one Verification round of spec §4.6 against the chosen
// devices, which must number exactly t-1 and all be currently unrevoked.
// The server is always the final member of the combining group.
func (u *User) Verify(chosenDevices []party.ID) (bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.observer.OnPhaseStart("verification")
	ok, err := u.verify(chosenDevices)
	u.observer.OnPhaseEnd("verification", err)
	return ok, err
}

// verify samples session2 and derives alpha, then hands the blinded request
// off to the server. The server, not the User, owns the actual
// reconstruct-and-unseal decision: it independently re-queries every chosen
// device and computes its own beta_T rather than trusting betas relayed
// through the User.
func (u *User) verify(chosenDevices party.IDSlice) (bool, error) {
	need := u.params.Threshold - 1
	if len(chosenDevices) != need {
		return false, perr.New(perr.InsufficientQuorum, fmt.Sprintf("need exactly %d devices, got %d", need, len(chosenDevices)))
	}

	group := append(party.IDSlice{}, chosenDevices...)
	group = append(group, u.server.ID())
	group = group.Sorted()

	g, err := u.table.Rank(group, u.params.Threshold, u.params.T)
	if err != nil {
		return false, perr.Wrap(perr.InvalidParameter, "rank verification group", err)
	}

	session2, err := u.suite.Rand(16)
	if err != nil {
		return false, perr.Wrap(perr.TransportFailure, "sample session2", err)
	}
	mod := u.mod()
	h2 := u.suite.HashToField(mod, "session2", session2)
	alpha := prf.Alpha(u.hpw(), h2)
	alphaVec := field.Broadcast(alpha, u.params.N)

	return u.server.HandleServerVerification(g, alphaVec, session2, chosenDevices)
}

// KeyUpdate runs the Key-Update phase of spec §4.6: it revokes every device
// in revoked, rotates the master secret by H(session1) for everyone else,
// and reseals the verifier under the rotated rw.
func (u *User) KeyUpdate(revoked party.IDSlice) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.observer.OnPhaseStart("key_update")
	err := u.keyUpdate(revoked)
	u.observer.OnPhaseEnd("key_update", err)
	return err
}

func (u *User) keyUpdate(revoked party.IDSlice) error {
	if u.s == nil {
		return perr.New(perr.NotRegistered, "no master secret to rotate")
	}
	session1, err := u.suite.Rand(16)
	if err != nil {
		return perr.Wrap(perr.TransportFailure, "sample session1", err)
	}

	revokedSet := make(map[party.ID]bool, len(revoked))
	for _, id := range revoked {
		revokedSet[id] = true
	}

	ids := make(party.IDSlice, 0, len(u.devices))
	for id := range u.devices {
		ids = append(ids, id)
	}
	sort.Sort(ids)

	for _, id := range ids {
		payload := session1
		if revokedSet[id] {
			payload = revocationSentinel
		}
		if err := u.devices[id].HandleKeyUpdate(payload); err != nil {
			return perr.Wrap(perr.TransportFailure, fmt.Sprintf("key update device %d", id), err)
		}
	}

	mod := u.mod()
	sigma := sessionScalar(u.suite, mod, session1)
	u.s = u.s.Scale(sigma)
	rw := prf.DirectEval(field.Broadcast(u.hpw(), u.params.N), u.s, u.params.Q, u.params.Q1, u.params.P)

	if _, err := u.server.HandleRevokeDevices(session1, revoked, rw); err != nil {
		return perr.Wrap(perr.TransportFailure, "revoke devices", err)
	}

	for _, id := range ids {
		if err := u.devices[id].HandleSendUpdatedShare(); err != nil {
			return perr.Wrap(perr.TransportFailure, fmt.Sprintf("send updated share to device %d", id), err)
		}
	}
	return nil
}

// Status queries the server's membership view (spec §6 status/status_response).
func (u *User) Status() (active, revoked party.IDSlice) {
	return u.server.Status()
}
