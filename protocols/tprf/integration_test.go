package tprf_test

import (
	"crypto/rand"
	"testing"

	"github.com/luxfi/tprf/internal/test"
	"github.com/luxfi/tprf/internal/transcript"
	"github.com/luxfi/tprf/pkg/party"
	"github.com/luxfi/tprf/pkg/perr"
	"github.com/luxfi/tprf/pkg/suite"
	"github.com/luxfi/tprf/protocols/tprf"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestIntegration(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Threshold PRF Protocol Integration Suite")
}

var _ = Describe("Threshold PRF Protocol", func() {
	var (
		params   tprf.Params
		s        suite.Suite
		server   *tprf.Server
		devices  map[party.ID]*tprf.Device
		user     *tprf.User
		recorder *transcript.Recorder
	)

	BeforeEach(func() {
		params = tprf.Params{
			Q:         test.DefaultQ,
			Q1:        test.DefaultQ1,
			P:         test.DefaultP,
			N:         test.DefaultN,
			T:         test.DefaultT,
			Threshold: test.DefaultThreshold,
		}
		s = suite.NewStdSuite(rand.Reader)
		server = tprf.NewServer(params, s, nil)

		devices = make(map[party.ID]*tprf.Device)
		devList := make([]*tprf.Device, 0, params.NDevices())
		for _, id := range test.PartyIDs(params.NDevices()) {
			d := tprf.NewDevice(id, params, s, nil)
			devices[id] = d
			devList = append(devList, d)
		}

		recorder = transcript.NewRecorder()
		user = tprf.NewUser(params, s, server, devList, rand.Reader, recorder)
		Expect(user.Register("hunter2")).To(Succeed())
	})

	It("verifies the happy path with devices {1,2} and the server", func() {
		ok, err := user.Verify([]party.ID{1, 2})
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())

		entries := recorder.Entries()
		Expect(entries).To(HaveLen(2))
		Expect(entries[0].Phase).To(Equal("registration"))
		Expect(entries[0].OK).To(BeTrue())
		Expect(entries[1].Phase).To(Equal("verification"))
		Expect(entries[1].OK).To(BeTrue())
	})

	It("rejects a verification_request to a revoked device", func() {
		Expect(user.KeyUpdate(party.IDSlice{3})).To(Succeed())

		_, err := devices[3].HandleVerificationRequest(1, nil, []byte("session2"))
		Expect(err).To(HaveOccurred())
		var perrErr *perr.Error
		Expect(err).To(BeAssignableToTypeOf(perrErr))
	})

	It("still verifies after rotation revokes an unrelated device", func() {
		Expect(user.KeyUpdate(party.IDSlice{4})).To(Succeed())

		ok, err := user.Verify([]party.ID{1, 2})
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
	})

	It("reports an error when a chosen device has been revoked", func() {
		Expect(user.KeyUpdate(party.IDSlice{3})).To(Succeed())

		_, err := user.Verify([]party.ID{3, 2})
		Expect(err).To(HaveOccurred())

		var perrErr *perr.Error
		Expect(err).To(BeAssignableToTypeOf(perrErr))
		Expect(server.IsActive(3)).To(BeFalse())
	})
})
