// Copyright (c) 2021-2024 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/ephemeral.
//
// SPDX-License-Identifier: Apache-2.0
package epoll_test

import (
	"os"

	"golang.org/x/sys/unix"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/delta/codecharacter-driver/pkg/epoll"
	"github.com/delta/codecharacter-driver/pkg/pollentry"
	"github.com/delta/codecharacter-driver/pkg/types"
)

var _ = Describe("Multiplexer", func() {
	It("reports Unregister once a registered stderr entry reaches EOF", func() {
		m, err := epoll.New()
		Expect(err).NotTo(HaveOccurred())
		defer m.Close()

		r, w, err := os.Pipe()
		Expect(err).NotTo(HaveOccurred())
		Expect(unix.SetNonblock(int(r.Fd()), true)).To(Succeed())

		entry := pollentry.NewStderrEntry(r, types.RolePlayer)
		Expect(m.RegisterStderr(entry)).To(Succeed())

		w.WriteString("hi\n")
		w.Close()

		var msg epoll.CallbackMessage
		for i := 0; i < 20; i++ {
			events, err := m.Poll(50, 8)
			Expect(err).NotTo(HaveOccurred())
			if len(events) == 0 {
				continue
			}
			msg, err = m.ProcessEvent(events[0])
			Expect(err).NotTo(HaveOccurred())
			if msg.Kind == epoll.Unregister {
				break
			}
		}
		Expect(msg.Kind).To(Equal(epoll.Unregister))

		collected, err := m.Unregister(msg.Key)
		Expect(err).NotTo(HaveOccurred())
		output, role := collected.Stderr.TakeOutput()
		Expect(output).To(ContainSubstring("hi"))
		Expect(role).To(Equal(types.RolePlayer))
		Expect(m.IsEmpty()).To(BeTrue())
	})
})
