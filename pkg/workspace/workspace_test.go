// Copyright (c) 2021-2024 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/ephemeral.
//
// SPDX-License-Identifier: Apache-2.0
package workspace_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/delta/codecharacter-driver/pkg/types"
	"github.com/delta/codecharacter-driver/pkg/workspace"
)

var _ = Describe("CopyDirAll", func() {
	It("recursively copies nested files and directories", func() {
		src, err := os.MkdirTemp("", "workspace-src")
		Expect(err).NotTo(HaveOccurred())
		defer os.RemoveAll(src)
		dst, err := os.MkdirTemp("", "workspace-dst")
		Expect(err).NotTo(HaveOccurred())
		defer os.RemoveAll(dst)

		Expect(os.MkdirAll(filepath.Join(src, "nested"), 0755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(src, "nested", "Makefile"), []byte("all:\n"), 0644)).To(Succeed())

		Expect(workspace.CopyDirAll(src, dst)).To(Succeed())

		data, err := os.ReadFile(filepath.Join(dst, "nested", "Makefile"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("all:\n"))
	})
})

var _ = Describe("FileName", func() {
	It("uses the public-class-name convention for Java", func() {
		Expect(workspace.FileName(types.Java)).To(Equal("Player"))
	})

	It("uses a fixed entry-point name for C++ and Python", func() {
		Expect(workspace.FileName(types.CPP)).To(Equal("run"))
		Expect(workspace.FileName(types.Python)).To(Equal("run"))
	})
})
