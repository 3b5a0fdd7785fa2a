// Copyright (c) 2021-2024 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/ephemeral.
//
// SPDX-License-Identifier: Apache-2.0
package result_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/delta/codecharacter-driver/pkg/driverrors"
	"github.com/delta/codecharacter-driver/pkg/result"
	"github.com/delta/codecharacter-driver/pkg/types"
)

var _ = Describe("CreateFinalResponse", func() {
	It("handles the empty single-turn case", func() {
		playerLog := "TURN 1\nfoo\nENDLOG\n"
		simulatorLog := "TURN, 1\nCOINS, 10\nDESTRUCTION, 5.0%\n"

		status := result.CreateFinalResponse("g1", 100, playerLog, simulatorLog)

		Expect(status.GameStatus).To(Equal(types.Executed))
		Expect(status.GameResult.DestructionPercentage).To(Equal(5.0))
		Expect(status.GameResult.CoinsUsed).To(Equal(uint64(90)))
		Expect(status.GameResult.Log).To(Equal("TURN, 1\nPRINT, foo\nCOINS, 10\nDESTRUCTION, 5.0%\n"))
	})

	It("interleaves logs for multiple turns, skipping turns the simulator only references", func() {
		playerLog := `
            TURN 1
            Bug is here
            No it's here
            ENDLOG
            Nothing
            TURN 100
            Nope, it's been here the whole time
            ENDLOG
            Useless
            `
		simulatorLog := `TURN, 1
            COINS, 100
            DESTRUCTION, 20.0%
            TURN, 3
            COINS, 100
            DESTRUCTION, 20.0%
            TURN, 100
            DESTRUCTION, 75.0%
            COINS, 10`

		status := result.CreateFinalResponse("1", 500, playerLog, simulatorLog)

		Expect(status.GameResult.DestructionPercentage).To(Equal(75.0))
		Expect(status.GameResult.CoinsUsed).To(Equal(uint64(490)))
		Expect(status.GameResult.Log).To(Equal(
			"TURN, 1\nPRINT, Bug is here\nPRINT, No it's here\nCOINS, 100\n" +
				"DESTRUCTION, 20.0%\nTURN, 3\nCOINS, 100\nDESTRUCTION, 20.0%\n" +
				"TURN, 100\nPRINT, Nope, it's been here the whole time\nDESTRUCTION, 75.0%\nCOINS, 10\n"))
	})

	It("drops logs captured under a malformed TURN header", func() {
		playerLog := "TURN abc\ninner\nENDLOG\n"
		simulatorLog := "TURN, 1\nCOINS, 50\nDESTRUCTION, 0.0%\n"

		status := result.CreateFinalResponse("g1", 50, playerLog, simulatorLog)

		Expect(status.GameResult.Log).NotTo(ContainSubstring("PRINT,"))
	})
})

var _ = Describe("CreateErrorResponse", func() {
	It("renders the ERRORS-prefixed log block", func() {
		err := driverrors.New(driverrors.RuntimeError, "exited with code 42")
		status := result.CreateErrorResponse("g1", err)

		Expect(status.GameStatus).To(Equal(types.ExecuteError))
		Expect(status.GameResult.HasErrors).To(BeTrue())
		Expect(status.GameResult.Log).To(ContainSubstring("ERROR TYPE: Runtime Error!"))
		Expect(status.GameResult.Log).To(ContainSubstring("ERRORS, exited with code 42"))
	})
})

var _ = Describe("CreateExecutingResponse", func() {
	It("carries no result payload", func() {
		status := result.CreateExecutingResponse("g1")
		Expect(status.GameStatus).To(Equal(types.Executing))
		Expect(status.GameResult).To(BeNil())
	})
})
