package errchan_test

import (
	"errors"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/physicslab/internal/dynamo"
	"github.com/san-kum/physicslab/internal/errchan"
)

var _ = Describe("Channel", func() {
	var ch *errchan.Channel

	BeforeEach(func() {
		ch = errchan.New()
	})

	It("starts cleared", func() {
		Expect(ch.Code()).To(Equal(dynamo.StatusOK))
		Expect(ch.CopyMessage(nil)).To(BeZero())
	})

	It("keeps the code across repeated reads", func() {
		ch.Set(dynamo.StatusInvalidHandle, "unknown handle")
		Expect(ch.Code()).To(Equal(dynamo.StatusInvalidHandle))
		Expect(ch.Code()).To(Equal(dynamo.StatusInvalidHandle))
	})

	It("is overwritten by a clear", func() {
		ch.Set(dynamo.StatusPolicyDenied, "steps must be > 0")
		ch.Clear()
		Expect(ch.Last()).To(Equal(errchan.Record{Code: dynamo.StatusOK}))
	})

	It("maps errors through the kernel taxonomy", func() {
		err := &dynamo.KernelError{Op: "step", Handle: 4, Wrapped: dynamo.ErrPolicyDenied, Detail: "dt must be positive"}
		Expect(ch.SetError(err)).To(Equal(dynamo.StatusPolicyDenied))
		Expect(ch.Last().Message).To(Equal(err.Error()))

		Expect(ch.SetError(errors.New("boom"))).To(Equal(dynamo.StatusInternalError))
		Expect(ch.SetError(nil)).To(Equal(dynamo.StatusOK))
		Expect(ch.Last().Message).To(BeEmpty())
	})

	Describe("CopyMessage", func() {
		const msg = "step world 9: dynamo: invalid handle"

		BeforeEach(func() {
			ch.Set(dynamo.StatusInvalidHandle, msg)
		})

		It("copies the whole message with a terminator when it fits", func() {
			buf := make([]byte, 64)
			n := ch.CopyMessage(buf)
			Expect(n).To(BeEquivalentTo(len(msg)))
			Expect(string(buf[:n])).To(Equal(msg))
			Expect(buf[n]).To(BeZero())
		})

		It("truncates without writing past the buffer", func() {
			backing := make([]byte, 16)
			for i := range backing {
				backing[i] = 0xAA
			}
			buf := backing[:8]

			n := ch.CopyMessage(buf)
			Expect(n).To(BeEquivalentTo(len(msg)))
			Expect(string(buf[:7])).To(Equal(msg[:7]))
			Expect(buf[7]).To(BeZero())
			for _, b := range backing[8:] {
				Expect(b).To(Equal(byte(0xAA)))
			}
		})

		It("writes nothing into an empty buffer", func() {
			backing := []byte{0xAA}
			Expect(ch.CopyMessage(backing[:0])).To(BeEquivalentTo(len(msg)))
			Expect(backing[0]).To(Equal(byte(0xAA)))
		})

		It("does not split a multi-byte character", func() {
			ch.Set(dynamo.StatusInvalidArgument, "Δt invalid")
			buf := make([]byte, 2)
			n := ch.CopyMessage(buf)
			Expect(n).To(BeEquivalentTo(len("Δt invalid")))
			Expect(buf[0]).To(BeZero())
		})
	})
})

var _ = Describe("Table", func() {
	It("isolates contexts", func() {
		table := errchan.NewTable()
		table.For(1).Set(dynamo.StatusInvalidHandle, "a")
		table.For(2).Set(dynamo.StatusPolicyDenied, "b")

		Expect(table.For(1).Code()).To(Equal(dynamo.StatusInvalidHandle))
		Expect(table.For(2).Code()).To(Equal(dynamo.StatusPolicyDenied))
		Expect(table.Len()).To(Equal(2))
	})

	It("starts a released context from a cleared record", func() {
		table := errchan.NewTable()
		table.For(7).Set(dynamo.StatusInternalError, "diverged")
		table.Release(7)

		Expect(table.Len()).To(BeZero())
		Expect(table.For(7).Code()).To(Equal(dynamo.StatusOK))
	})

	It("hands out one channel per id under contention", func() {
		table := errchan.NewTable()
		seen := make([]*errchan.Channel, 32)

		var wg sync.WaitGroup
		for i := range seen {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				seen[i] = table.For(42)
			}(i)
		}
		wg.Wait()

		for _, ch := range seen {
			Expect(ch).To(BeIdenticalTo(seen[0]))
		}
	})
})
