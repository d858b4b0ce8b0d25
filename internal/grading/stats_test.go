package grading

import "testing"

func TestAggregate(t *testing.T) {
	st := Aggregate([]float64{40, 60, 80, 100})

	if st.TotalStudents != 4 {
		t.Fatalf("total students = %d, want 4", st.TotalStudents)
	}
	if st.Mean != 70 {
		t.Fatalf("mean = %v, want 70", st.Mean)
	}
	if st.Min != 40 || st.Max != 100 {
		t.Fatalf("min/max = %v/%v, want 40/100", st.Min, st.Max)
	}
	if st.Median != 70 {
		t.Fatalf("median = %v, want 70", st.Median)
	}
	// population stddev of {40,60,80,100} = sqrt(500) = 22.36
	if st.StdDev != 22.36 {
		t.Fatalf("stddev = %v, want 22.36", st.StdDev)
	}
}

func TestAggregateOddMedian(t *testing.T) {
	st := Aggregate([]float64{10, 90, 50})
	if st.Median != 50 {
		t.Fatalf("median = %v, want 50", st.Median)
	}
}

func TestAggregateEmpty(t *testing.T) {
	st := Aggregate(nil)
	if st.TotalStudents != 0 {
		t.Fatalf("total students = %d, want 0", st.TotalStudents)
	}
	if len(st.Histogram) != 5 {
		t.Fatalf("histogram should keep its five bands, got %d", len(st.Histogram))
	}
	for _, b := range st.Histogram {
		if b.Count != 0 {
			t.Fatalf("empty class histogram should be all zero, got %+v", st.Histogram)
		}
	}
}

func TestHistogramBands(t *testing.T) {
	st := Aggregate([]float64{0, 19.99, 20, 39.5, 40, 59.9, 60, 79.9, 80, 100})
	wantCounts := []int{2, 2, 2, 2, 2}
	for i, b := range st.Histogram {
		if b.Count != wantCounts[i] {
			t.Fatalf("band %s count = %d, want %d", b.Range, b.Count, wantCounts[i])
		}
	}
	wantRanges := []string{"0-19", "20-39", "40-59", "60-79", "80-100"}
	for i, b := range st.Histogram {
		if b.Range != wantRanges[i] {
			t.Fatalf("band %d labeled %q, want %q", i, b.Range, wantRanges[i])
		}
	}
}

func TestAggregateSingleStudent(t *testing.T) {
	st := Aggregate([]float64{75})
	if st.Mean != 75 || st.Median != 75 || st.Min != 75 || st.Max != 75 {
		t.Fatalf("single-student stats wrong: %+v", st)
	}
	if st.StdDev != 0 {
		t.Fatalf("single-student stddev = %v, want 0", st.StdDev)
	}
}
