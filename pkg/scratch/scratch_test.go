// Copyright (c) 2021-2024 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/ephemeral.
//
// SPDX-License-Identifier: Apache-2.0
package scratch_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/delta/codecharacter-driver/pkg/scratch"
)

var _ = Describe("Dir", func() {
	It("creates and removes the scratch directory", func() {
		gameID := "030af985-f4b5-4914-94d8-e559576449e3"
		dir, err := scratch.New(gameID)
		Expect(err).NotTo(HaveOccurred())

		Expect(ioutil.WriteFile(filepath.Join(dir.Path(), "something"), []byte("Hello"), 0644)).To(Succeed())
		_, statErr := os.Stat(dir.Path())
		Expect(statErr).NotTo(HaveOccurred())

		dir.Close()
		_, statErr = os.Stat(dir.Path())
		Expect(os.IsNotExist(statErr)).To(BeTrue())
	})

	It("refuses to create a scratch dir that already exists", func() {
		gameID := "dc0f4b76-duplicate-game-id"
		dir, err := scratch.New(gameID)
		Expect(err).NotTo(HaveOccurred())
		defer dir.Close()

		_, err = scratch.New(gameID)
		Expect(err).To(HaveOccurred())
	})

	It("lets exactly one of many concurrent creators win a race on the same game id", func() {
		gameID := "7e2a5e3a-racing-game-id"
		const attempts = 16

		var wg sync.WaitGroup
		dirs := make([]*scratch.Dir, attempts)
		errs := make([]error, attempts)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				dirs[i], errs[i] = scratch.New(gameID)
			}(i)
		}
		wg.Wait()

		var successes int
		for i := 0; i < attempts; i++ {
			if errs[i] == nil {
				successes++
				defer dirs[i].Close()
			}
		}
		Expect(successes).To(Equal(1))
	})

	It("creates nested sub-directories", func() {
		dir, err := scratch.New("0c3d5d1a-subdir-test")
		Expect(err).NotTo(HaveOccurred())
		defer dir.Close()

		Expect(dir.CreateSubDir("boilerplate/player")).To(Succeed())
		info, err := os.Stat(dir.SubPath("boilerplate/player"))
		Expect(err).NotTo(HaveOccurred())
		Expect(info.IsDir()).To(BeTrue())
	})
})
