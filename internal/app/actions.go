package app

import (
	"errors"
	"fmt"

	"github.com/ayusman/handvox/internal/capture"
	"github.com/ayusman/handvox/internal/gesture"
	"github.com/ayusman/handvox/internal/voxel"
)

// StatusPointerOutside is reported when the fingertip maps outside the grid.
const StatusPointerOutside = "Pointer outside grid"

// apply carries out an admitted action against the voxel store. ok is
// false when nothing was changed, in which case the gate state must not be
// committed.
func (a *App) apply(action gesture.Action, r capture.Reading) (status string, ok bool) {
	switch action {
	case gesture.ActionClear:
		n := a.voxels.Clear()
		return fmt.Sprintf("Cleared %d voxels", n), true

	case gesture.ActionRecolor:
		n := a.voxels.UpdateAll(func(voxel.Cell) voxel.Color {
			return voxel.RandomColor(a.rand)
		})
		return fmt.Sprintf("Recolored %d voxels", n), true

	case gesture.ActionBurst:
		cells := make([]voxel.Cell, a.config.BurstSize)
		for i := range cells {
			cells[i] = voxel.Cell{
				Coord: voxel.RandomCoord(a.rand, a.config.GridSize),
				Color: voxel.RandomColor(a.rand),
			}
		}
		a.voxels.AddBatch(cells)
		return fmt.Sprintf("Burst: added %d voxels", len(cells)), true

	case gesture.ActionAddVoxel:
		c, err := a.mapper.Map(r.Hand, r.Width, r.Height)
		if err != nil {
			if errors.Is(err, voxel.ErrOutOfGrid) {
				a.logger.Debug("pointer outside grid", "error", err)
				return StatusPointerOutside, false
			}
			a.logger.Warn("map fingertip", "error", err)
			return "", false
		}
		a.voxels.Add(c, voxel.HueColor(c.X, a.config.GridSize))
		return fmt.Sprintf("Added voxel at %s", c), true
	}

	return "", false
}
