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

// Command drift converts ocean drifter and float trajectory datasets to NetCDF.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/drift/driftutil"
)

func main() {
	if err := driftutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
