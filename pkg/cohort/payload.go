// Copyright (c) 2021-2024 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/ephemeral.
//
// SPDX-License-Identifier: Apache-2.0
package cohort

import (
	"bufio"
	"fmt"
	"io"

	"github.com/delta/codecharacter-driver/pkg/types"
)

// writeTroops writes the attacker/defender section shared by Normal and PvP
// initial payloads: counts followed by one fixed-width line per troop. The
// defender line's fourth field is a literal 0 placeholder slot mirroring the
// attacker line's speed field, which defenders don't have.
func writeTroops(w *bufio.Writer, attackers []types.Attacker, defenders []types.Defender) error {
	if _, err := fmt.Fprintf(w, "%d\n", len(attackers)); err != nil {
		return err
	}
	for _, a := range attackers {
		if _, err := fmt.Fprintf(w, "%d %d %d %d %d %d %d %d %d\n",
			a.HP, a.Range, a.AttackPower, a.Speed, a.Price, a.IsAerial, a.Weight, a.NumAbilityTurns, a.AbilityActivationCost); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "%d\n", len(defenders)); err != nil {
		return err
	}
	for _, d := range defenders {
		if _, err := fmt.Fprintf(w, "%d %d %d %d %d %d\n",
			d.HP, d.Range, d.AttackPower, 0, d.Price, d.IsAerial); err != nil {
			return err
		}
	}
	return nil
}

// WriteInitialNormalInput writes the Normal-mode initial payload: turn/coin
// header, troop roster, then the map dimensions and cells.
func WriteInitialNormalInput(dst io.Writer, req *types.NormalGameRequest, mapSize int) error {
	w := bufio.NewWriter(dst)
	if _, err := fmt.Fprintf(w, "%d %d\n", req.Parameters.NoOfTurns, req.Parameters.NoOfCoins); err != nil {
		return err
	}
	if err := writeTroops(w, req.Parameters.Attackers, req.Parameters.Defenders); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%d %d\n", mapSize, mapSize); err != nil {
		return err
	}
	for _, row := range req.Map {
		for _, cell := range row {
			if _, err := fmt.Fprintf(w, "%d ", cell); err != nil {
				return err
			}
		}
		if _, err := w.WriteString("\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}

// WriteInitialPvPInput writes the PvP-mode initial payload: turn/per-turn-coin
// header followed by the troop roster. PvP carries no map.
func WriteInitialPvPInput(dst io.Writer, req *types.PvPGameRequest) error {
	w := bufio.NewWriter(dst)
	if _, err := fmt.Fprintf(w, "%d %d\n", req.Parameters.NoOfTurns, req.Parameters.NoOfCoins); err != nil {
		return err
	}
	if err := writeTroops(w, req.Parameters.Attackers, req.Parameters.Defenders); err != nil {
		return err
	}
	return w.Flush()
}
