// Command fastx reads FASTA and FASTQ files, possibly compressed, and reports
// statistics about their records as CSV.
//
// Run with -h to see the available options.
package main

import (
	log "github.com/sirupsen/logrus"

	"github.com/AdRoll/fastx"
	"github.com/AdRoll/fastx/metrics"
)

func main() {
	if err := fastx.MainCLI(metrics.All); err != nil {
		log.WithError(err).Fatal("fastx failed")
	}
}
