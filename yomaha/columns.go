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

package yomaha

import "github.com/spatialmodel/drift/nc"

// Column describes one column of the YoMaHa'07 file.
type Column struct {
	Name, LongName, Units string
	Type                  nc.Type

	// Missing is the literal token that marks a missing value.
	Missing string
}

const timeUnits = "days since 2000-01-01 0:0:0 UTC"

// Columns is the layout of a YoMaHa'07 line, in file order.
var Columns = [...]Column{
	// deep drift
	{"x_deep", "Longitude", "degrees_east", nc.Float, "-999.9999"},
	{"y_deep", "Latitude", "degrees_north", nc.Float, "-99.9999"},
	{"z_park", "Parking Pressure", "dbar", nc.Float, "-999.9"},
	{"t_deep", "Time", timeUnits, nc.Float, "-999.999"},
	{"u_deep", "Estimate of zonal deep velocity", "cm/s", nc.Float, "-999.99"},
	{"v_deep", "Estimate of meridional deep velocity", "cm/s", nc.Float, "-999.99"},
	{"e_u_deep", "Estimate of error of zonal deep velocity", "cm/s", nc.Float, "-999.99"},
	{"e_v_deep", "Estimate of error of meridional deep velocity", "cm/s", nc.Float, "-999.99"},

	// surface drift
	{"x_surf", "Longitude", "degrees_east", nc.Float, "-999.9999"},
	{"y_surf", "Latitude", "degrees_north", nc.Float, "-99.9999"},
	{"t_surf", "Time", timeUnits, nc.Float, "-999.999"},
	{"u_surf", "Estimate of zonal velocity at sea surface", "cm/s", nc.Float, "-999.99"},
	{"v_surf", "Estimate of meridional velocity at sea surface", "cm/s", nc.Float, "-999.99"},
	{"e_u_surf", "Estimate of error of zonal velocity at sea surface", "cm/s", nc.Float, "-999.99"},
	{"e_v_surf", "Estimate of error of meridional velocity at sea surface", "cm/s", nc.Float, "-999.99"},

	// last fix of the previous cycle
	{"x_last_prev", "Longitude of the last fix at the surface during previous cycle", "degrees_east", nc.Float, "-999.9999"},
	{"y_last_prev", "Latitude of the last fix at the surface during previous cycle", "degrees_north", nc.Float, "-99.9999"},
	{"t_last_prev", "Time of the last fix at the surface during previous cycle", timeUnits, nc.Float, "-999.999"},

	// first fix
	{"x_first", "Longitude of the first fix at the surface", "degrees_east", nc.Float, "-999.9999"},
	{"y_first", "Latitude of the first fix at the surface", "degrees_north", nc.Float, "-99.9999"},
	{"t_first", "Time of the first fix at the surface", timeUnits, nc.Float, "-999.999"},

	// last fix
	{"x_last", "Longitude of the last fix at the surface", "degrees_east", nc.Float, "-999.9999"},
	{"y_last", "Latitude of the last fix at the surface", "degrees_north", nc.Float, "-99.9999"},
	{"t_last", "Time of the last fix at the surface", timeUnits, nc.Float, "-999.999"},

	{"n_fix", "Number of surface fixes", "", nc.Int, "-999"},
	{"float_id", "Float ID", "", nc.Int, "-999"},
	{"n_cycle", "Cycle number", "", nc.Int, "-999"},
	{"inv_flag", "Time inversion/duplication flag", "", nc.Byte, "-128"},
}

// Variable returns the container variable of c.
func (c Column) Variable() nc.Variable {
	return nc.Variable{
		Name:     c.Name,
		LongName: c.LongName,
		Units:    c.Units,
		Type:     c.Type,
		Nullable: true,
		Attributes: []nc.Attribute{
			{Name: "missing_token", Value: c.Missing},
		},
	}
}
