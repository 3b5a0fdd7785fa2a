// Copyright (c) 2021-2024 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/ephemeral.
//
// SPDX-License-Identifier: Apache-2.0

// White-box: matchFSM and newMatchFSM are unexported.
package cohort

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/delta/codecharacter-driver/pkg/types"
)

var _ = Describe("matchFSM", func() {
	It("walks the happy path from Init to Completed", func() {
		fsm := newMatchFSM()
		Expect(fsm.Current()).To(Equal(types.StateInit))

		events := []string{types.EventStage, types.EventWire, types.EventSpawn, types.EventPump, types.EventFinish}
		for _, ev := range events {
			Expect(fsm.Fire(ev)).To(Succeed())
		}
		Expect(fsm.Current()).To(Equal(types.StateCompleted))

		want := []string{types.StateInit, types.StateStaged, types.StateWired, types.StateSpawned, types.StatePumping, types.StateCompleted}
		Expect(fsm.History()).To(Equal(want))
	})

	It("rejects an out-of-order event and leaves the state unchanged", func() {
		fsm := newMatchFSM()
		Expect(fsm.Fire(types.EventSpawn)).To(HaveOccurred())
		Expect(fsm.Current()).To(Equal(types.StateInit))
	})

	It("reaches Aborted from every state along the happy path", func() {
		path := []string{types.EventStage, types.EventWire, types.EventSpawn, types.EventPump, types.EventFinish}
		for i := 0; i <= len(path); i++ {
			fsm := newMatchFSM()
			for _, ev := range path[:i] {
				Expect(fsm.Fire(ev)).To(Succeed())
			}
			Expect(fsm.Fire(types.EventAbort)).To(Succeed())
			Expect(fsm.Current()).To(Equal(types.StateAborted))
		}
	})
})
