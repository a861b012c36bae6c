// Copyright 2025 Quasar Labs
// This file is part of the Quasar uncertainty quantification toolkit.
//
// Quasar is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Quasar is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Quasar. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"log"
	"os"

	"github.com/quasar-uq/quasar/cmd/quasar/report"
	"github.com/quasar-uq/quasar/cmd/quasar/sample"
	"github.com/quasar-uq/quasar/cmd/quasar/surrogate"
	"github.com/urfave/cli/v2"
)

// QuasarApp bundles every sampling, surrogate and reporting command.
var QuasarApp = cli.App{
	Name:      "Quasar",
	HelpName:  "quasar",
	Usage:     "draw, refine and archive samples of uncertain quantities",
	Copyright: "(c) 2024 Quasar Labs",
	Commands: []*cli.Command{
		&sample.McsCommand,
		&sample.LhsCommand,
		&sample.StsCommand,
		&sample.RssCommand,
		&sample.McmcCommand,
		&sample.ImportanceCommand,
		&surrogate.KrigingCommand,
		&report.Command,
	},
}

func main() {
	if err := QuasarApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
