// Copyright (c) 2021-2024 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/ephemeral.
//
// SPDX-License-Identifier: Apache-2.0
package fifo_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/delta/codecharacter-driver/pkg/fifo"
)

var _ = Describe("Pair", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "fifo-test")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	It("creates a FIFO node on disk", func() {
		path := filepath.Join(dir, "p1_in")
		p, err := fifo.New(path)
		Expect(err).NotTo(HaveOccurred())
		defer p.Close()

		info, err := os.Stat(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(info.Mode() & os.ModeNamedPipe).NotTo(Equal(os.FileMode(0)))
	})

	It("yields the endpoint pair exactly once", func() {
		path := filepath.Join(dir, "p2_in")
		p, err := fifo.New(path)
		Expect(err).NotTo(HaveOccurred())
		defer p.Close()

		w, r, err := p.Ends()
		Expect(err).NotTo(HaveOccurred())
		Expect(w).NotTo(BeNil())
		Expect(r).NotTo(BeNil())

		_, _, err = p.Ends()
		Expect(err).To(HaveOccurred())
	})
})
