package testutil

import (
	"fmt"
	"strings"
)

// HeartCSV builds a minimal CSV matching the built-in heart failure schema:
// the full 13-column header with source names, negatives label-0 rows
// followed by positives label-1 rows. Continuous values vary row to row so
// no column is constant within a partition.
func HeartCSV(negatives, positives int) string {
	var b strings.Builder
	b.WriteString("age,anaemia,creatinine_phosphokinase,diabetes,ejection_fraction," +
		"high_blood_pressure,platelets,serum_creatinine,serum_sodium,sex,smoking,time,DEATH_EVENT\n")
	n := negatives + positives
	for i := 0; i < n; i++ {
		label := 0
		if i >= negatives {
			label = 1
		}
		// age, anaemia, cpk, diabetes, ejection_fraction, hbp, platelets,
		// serum_creatinine, serum_sodium, sex, smoking, time, DEATH_EVENT
		fmt.Fprintf(&b, "%d,%d,%d,%d,%d,%d,%d,1.%d,%d,%d,%d,%d,%d\n",
			45+i, i%2, 100+10*i, (i+1)%2, 30+i, i%2, 200000+100*i,
			i%10, 130+i, i%2, (i/2)%2, 4+2*i, label)
	}
	return b.String()
}
