/*
Copyright © 2024 the drift authors.
This file is part of drift.

drift is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

drift is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with drift.  If not, see <http://www.gnu.org/licenses/>.
*/

package gdp

import (
	"github.com/spatialmodel/drift"
	"github.com/spatialmodel/drift/nc"
)

// Dimension names of the trajectory container.
const (
	RowDim = "buoycount"
	ObsDim = "obs"
)

var timeUnits = drift.DaysUnits(drift.Epoch1980)

// observationVars are the per-observation variables, in the order of
// Trajectory.Samples.
var observationVars = []nc.Variable{
	{Name: "time", LongName: "time stamp", Units: timeUnits, Type: nc.Double, Nullable: true},
	{Name: "lat", LongName: "latitude (-90,90)", Units: "degrees_north", Type: nc.Double, Nullable: true},
	{Name: "lon", LongName: "longitude (-180, 180)", Units: "degrees_east", Type: nc.Double, Nullable: true},
	{Name: "temp", LongName: "temperature", Units: "deg C", Type: nc.Double, Nullable: true},
	{Name: "u", LongName: "eastward velocity", Units: "cm/s", Type: nc.Double, Nullable: true},
	{Name: "v", LongName: "northward velocity", Units: "cm/s", Type: nc.Double, Nullable: true},
	{Name: "speed", LongName: "modulus of (u,v)", Units: "cm/s", Type: nc.Double, Nullable: true},
	{Name: "varlat", LongName: "variance of the latitude", Units: "degrees**2", Type: nc.Double, Nullable: true},
	{Name: "varlon", LongName: "variance of the longitude", Units: "degrees**2", Type: nc.Double, Nullable: true},
	{Name: "vartemp", LongName: "variance of the temperature", Units: "K**2", Type: nc.Double, Nullable: true},
}

// deploymentVars are the per-drifter metadata variables, in the order of
// Deployment.Scalars.
var deploymentVars = []nc.Variable{
	{Name: "deptime", LongName: "deployment time stamp", Units: timeUnits, Type: nc.Double, Nullable: true},
	{Name: "deplat", LongName: "deployment latitude (-90,90)", Units: "degrees_north", Type: nc.Double, Nullable: true},
	{Name: "deplon", LongName: "deployment longitude (-180, 180)", Units: "degrees_east", Type: nc.Double, Nullable: true},
	{Name: "endtime", LongName: "end time stamp", Units: timeUnits, Type: nc.Double, Nullable: true},
	{Name: "endlat", LongName: "end latitude (-90,90)", Units: "degrees_north", Type: nc.Double, Nullable: true},
	{Name: "endlon", LongName: "end longitude (-180, 180)", Units: "degrees_east", Type: nc.Double, Nullable: true},
	{Name: "dltime", LongName: "drogue lost time stamp", Units: timeUnits, Type: nc.Double, Nullable: true},
}

// Provenance holds the global attributes of a trajectory container.
type Provenance struct {
	History, Source string

	// ID identifies the conversion. MetadataDigest is a digest of the
	// metadata table the trajectories were joined with.
	ID, MetadataDigest string

	SpeedSource SpeedSource
}

// Schema returns the layout of a trajectory container.
func Schema(p Provenance) *nc.RaggedSchema {
	return &nc.RaggedSchema{
		InstanceDim: RowDim,
		SampleDim:   ObsDim,
		Index:       nc.Variable{Name: RowDim, LongName: "row index", Type: nc.Int},
		ID: nc.Variable{Name: "aomlid", LongName: "AOML buoy identification number (PKey)", Type: nc.Int,
			Attributes: []nc.Attribute{{Name: "cf_role", Value: "trajectory_id"}}},
		RowSize:  nc.Variable{Name: "rowsize", LongName: "number of observations of the buoy", Type: nc.Int},
		Instance: deploymentVars,
		Sample:   observationVars,
		Global: []nc.Attribute{
			{Name: "Conventions", Value: "CF-1.6"},
			{Name: "featureType", Value: "trajectory"},
			{Name: "history", Value: p.History},
			{Name: "source", Value: p.Source},
			{Name: "id", Value: p.ID},
			{Name: "metadata_digest", Value: p.MetadataDigest},
			{Name: "speed_source", Value: p.SpeedSource.String()},
		},
	}
}
