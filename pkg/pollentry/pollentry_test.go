// Copyright (c) 2021-2024 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/ephemeral.
//
// SPDX-License-Identifier: Apache-2.0
package pollentry_test

import (
	"os"
	"os/exec"

	"golang.org/x/sys/unix"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/delta/codecharacter-driver/pkg/pollentry"
	"github.com/delta/codecharacter-driver/pkg/types"
)

var _ = Describe("StderrEntry", func() {
	It("absorbs readable bytes and reports EOF on writer close", func() {
		r, w, err := os.Pipe()
		Expect(err).NotTo(HaveOccurred())
		Expect(unix.SetNonblock(int(r.Fd()), true)).To(Succeed())

		entry := pollentry.NewStderrEntry(r, types.RolePlayer)

		_, err = w.WriteString("TURN 1\nhello\nENDLOG\n")
		Expect(err).NotTo(HaveOccurred())
		w.Close()

		var eof bool
		for i := 0; i < 10 && !eof; i++ {
			eof, err = entry.AbsorbReadable()
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(eof).To(BeTrue())

		output, role := entry.TakeOutput()
		Expect(output).To(ContainSubstring("hello"))
		Expect(role).To(Equal(types.RolePlayer))
	})
})

var _ = Describe("ProcessEntry", func() {
	It("waits for a spawned child and reports its exit code", func() {
		cmd := exec.Command("true")
		Expect(cmd.Start()).To(Succeed())

		entry, err := pollentry.NewProcessEntry(cmd.Process, types.RoleSimulator)
		Expect(err).NotTo(HaveOccurred())
		Expect(entry.Role()).To(Equal(types.RoleSimulator))

		code, err := entry.Wait()
		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(Equal(0))
	})
})
