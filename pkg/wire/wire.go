// Package wire implements the external message schema of spec §6: a
// kind-discriminated envelope carrying a cbor-encoded payload, following the
// Message shape of the teacher's pkg/protocol.Message (SSID/From/To/Data)
// reduced to this system's single-round request/response exchanges rather
// than a multi-round consensus handshake.
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/luxfi/tprf/pkg/field"
	"github.com/luxfi/tprf/pkg/party"
)

// Kind discriminates the payload carried by an Envelope. The set is closed
// and normative per spec §6.
type Kind string

const (
	KindRegisterServer      Kind = "register_server"
	KindRegisterDevice      Kind = "register_device"
	KindStoreCipher         Kind = "store_cipher"
	KindVerificationRequest Kind = "verification_request"
	KindVerificationResp    Kind = "verification_response"
	KindServerVerification  Kind = "server_verification"
	KindVerificationResult  Kind = "verification_result"
	KindRevokeDevices       Kind = "revoke_devices"
	KindKeyUpdate           Kind = "key_update"
	KindSendUpdatedShare    Kind = "send_updated_share"
	KindStatus              Kind = "status"
	KindStatusResponse      Kind = "status_response"
)

// Envelope is the newline-delimited, JSON-encoded message unit exchanged
// between roles. Data holds the cbor encoding of the Kind-specific payload;
// nesting cbor inside the JSON envelope keeps the outer framing
// human-readable while the inner payload stays compact and self-describing
// for vectors and index maps, mirroring how the teacher nests a cbor-encoded
// round.Content inside protocol.Message.Data.
type Envelope struct {
	Kind Kind            `json:"kind"`
	From party.ID        `json:"from,omitempty"`
	To   party.ID        `json:"to,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Encode cbor-marshals payload into an Envelope of the given kind.
func Encode(kind Kind, from, to party.ID, payload interface{}) (*Envelope, error) {
	raw, err := cbor.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("wire: encode %s: %w", kind, err)
	}
	b64, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("wire: encode %s: %w", kind, err)
	}
	return &Envelope{Kind: kind, From: from, To: to, Data: b64}, nil
}

// Decode cbor-unmarshals the Envelope's Data into dst, which must be a
// pointer to the struct matching e.Kind.
func (e *Envelope) Decode(dst interface{}) error {
	var raw []byte
	if err := json.Unmarshal(e.Data, &raw); err != nil {
		return fmt.Errorf("wire: decode %s: %w", e.Kind, err)
	}
	if err := cbor.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("wire: decode %s: %w", e.Kind, err)
	}
	return nil
}

// Marshal serializes the envelope as a single JSON line (the newline
// delimiter is the transport's responsibility, out of scope here).
func (e *Envelope) Marshal() ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("wire: marshal: %w", err)
	}
	return b, nil
}

// Unmarshal parses one JSON line into an Envelope.
func Unmarshal(line []byte) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(line, &e); err != nil {
		return nil, fmt.Errorf("wire: unmarshal: %w", err)
	}
	return &e, nil
}

// VectorMap is the index->value wire form of a field.Vector (spec §6: "as
// index map"), keeping the payload free of any field.Modulus context.
type VectorMap map[int]uint64

// ToVectorMap flattens a field.Vector into its wire form.
func ToVectorMap(v field.Vector) VectorMap {
	m := make(VectorMap, len(v))
	for i, e := range v {
		m[i] = e.Uint64()
	}
	return m
}

// FromVectorMap rebuilds a field.Vector of dimension n from its wire form
// under modulus mod. Missing indices default to zero.
func FromVectorMap(mod *field.Modulus, n int, m VectorMap) field.Vector {
	v := field.NewVector(mod, n)
	for i, x := range m {
		if i >= 0 && i < n {
			v[i] = field.FromUint64(mod, x)
		}
	}
	return v
}

// RegisterServer is the register_server payload: User -> Server.
type RegisterServer struct {
	NVector  int       `cbor:"n_vector"`
	NDevices int       `cbor:"n_devices"`
	T        int       `cbor:"t"`
	Ss       VectorMap `cbor:"Ss"`
}

// RegisterDevice is the register_device payload: User -> Device.
type RegisterDevice struct {
	DeviceID party.ID             `cbor:"device_id"`
	NVector  int                  `cbor:"n_vector"`
	T        int                  `cbor:"t"`
	SDi      map[uint64]VectorMap `cbor:"SDi"`
}

// StoreCipher is the store_cipher payload: User -> Server.
type StoreCipher struct {
	Cipher VectorMap `cbor:"cipher"`
	IV     VectorMap `cbor:"iv"`
}

// VerificationRequest is the verification_request payload: User -> Peer.
type VerificationRequest struct {
	Session2 []byte    `cbor:"session2"`
	Alpha    VectorMap `cbor:"alpha"`
}

// VerificationResponse is the verification_response payload: Peer -> User.
// ErrorKind carries the perr.Kind tag alongside the message so a failure
// survives the wire round trip as a typed error, not a bare string.
type VerificationResponse struct {
	Beta      *uint64 `cbor:"beta,omitempty"`
	Error     string  `cbor:"error,omitempty"`
	ErrorKind string  `cbor:"error_kind,omitempty"`
}

// ServerVerification is the server_verification payload: User -> Server.
type ServerVerification struct {
	Pw            string     `cbor:"pw"`
	Session2      []byte     `cbor:"session2"`
	ExpectedRw    uint64     `cbor:"expected_rw"`
	ChosenDevices []party.ID `cbor:"chosen_devices"`
}

// VerificationResult is the verification_result payload: Server -> User.
type VerificationResult struct {
	VerificationOK bool `cbor:"verification_ok"`
}

// RevokeDevices is the revoke_devices payload: User -> Server.
type RevokeDevices struct {
	Session1       []byte     `cbor:"session1"`
	RevokedDevices []party.ID `cbor:"revoked_devices"`
}

// KeyUpdate is the key_update payload: Server -> Device. Session1 carries the
// literal sentinel string "1" for a device being revoked.
type KeyUpdate struct {
	Session1 []byte `cbor:"session1"`
}

// SendUpdatedShare is the send_updated_share payload: Server -> Device. It
// carries no fields (spec §6: "—"); the act of receiving it is the signal.
type SendUpdatedShare struct{}

// Status is the status payload: User -> Server. It carries no fields.
type Status struct{}

// StatusResponse is the status_response payload: Server -> User.
type StatusResponse struct {
	NDevices       int        `cbor:"n_devices"`
	T              int        `cbor:"t"`
	ActiveDevices  []party.ID `cbor:"active_devices"`
	RevokedDevices []party.ID `cbor:"revoked_devices"`
}
