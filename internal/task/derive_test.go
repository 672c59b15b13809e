package task_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"taskdeck/internal/task"
)

func date(y int, m time.Month, d int) *task.Date {
	return &task.Date{Year: y, Month: m, Day: d}
}

func mk(id, title string, p task.Priority, completed bool, created time.Time) task.Task {
	return task.Task{ID: id, Title: title, Priority: p, Completed: completed, CreatedAt: created}
}

func ids(tasks []task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestDerive_ScenarioSingleHighTask(t *testing.T) {
	tasks := []task.Task{mk("1", "Buy milk", task.PriorityHigh, false, t0)}

	v := task.Derive(tasks, task.Filter{}, t0)

	require.Len(t, v.Visible, 1)
	assert.False(t, v.Visible[0].Completed)
	assert.Equal(t, task.Stats{Total: 1, Completed: 0, Pending: 1, HighPriority: 1}, v.Stats)
}

func TestDerive_DefaultSortNewestFirst(t *testing.T) {
	tasks := []task.Task{
		mk("t1", "first", task.PriorityMedium, false, t0),
		mk("t2", "second", task.PriorityMedium, false, t0.Add(time.Hour)),
	}

	v := task.Derive(tasks, task.Filter{}, t0)
	assert.Equal(t, []string{"t2", "t1"}, ids(v.Visible))

	v = task.Derive(tasks, task.Filter{Sort: task.SortDate}, t0)
	assert.Equal(t, []string{"t2", "t1"}, ids(v.Visible))
}

func TestDerive_StatusFilter(t *testing.T) {
	tasks := []task.Task{
		mk("a", "a", task.PriorityLow, false, t0),
		mk("b", "b", task.PriorityLow, true, t0),
		mk("c", "c", task.PriorityLow, false, t0),
	}

	tests := []struct {
		status task.Status
		want   []string
	}{
		{task.StatusAll, []string{"a", "b", "c"}},
		{"", []string{"a", "b", "c"}},
		{task.StatusActive, []string{"a", "c"}},
		{task.StatusCompleted, []string{"b"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			v := task.Derive(tasks, task.Filter{Status: tt.status}, t0)
			assert.Equal(t, tt.want, ids(v.Visible))
		})
	}
}

func TestDerive_CategoryFilterIsExact(t *testing.T) {
	tasks := []task.Task{
		{ID: "w", Title: "w", Category: "Work", CreatedAt: t0},
		{ID: "lw", Title: "lw", Category: "work", CreatedAt: t0},
		{ID: "n", Title: "n", CreatedAt: t0},
	}

	assert.Equal(t, []string{"w"}, ids(task.Derive(tasks, task.Filter{Category: "Work"}, t0).Visible))
	assert.Equal(t, []string{"w", "lw", "n"}, ids(task.Derive(tasks, task.Filter{Category: task.CategoryAll}, t0).Visible))
}

func TestDerive_SearchIsCaseInsensitiveSubstring(t *testing.T) {
	tasks := []task.Task{
		mk("1", "Buy MILK", task.PriorityLow, false, t0),
		mk("2", "Call mom", task.PriorityLow, false, t0),
		mk("3", "milkshake", task.PriorityLow, false, t0),
	}

	v := task.Derive(tasks, task.Filter{Search: "Milk"}, t0)
	assert.Equal(t, []string{"1", "3"}, ids(v.Visible))
}

func TestDerive_PredicatesCombine(t *testing.T) {
	tasks := []task.Task{
		{ID: "1", Title: "report", Category: "Work", CreatedAt: t0},
		{ID: "2", Title: "report", Category: "Work", Completed: true, CreatedAt: t0},
		{ID: "3", Title: "report", Category: "Personal", CreatedAt: t0},
		{ID: "4", Title: "email", Category: "Work", CreatedAt: t0},
	}

	v := task.Derive(tasks, task.Filter{Status: task.StatusActive, Category: "Work", Search: "rep"}, t0)
	assert.Equal(t, []string{"1"}, ids(v.Visible))
}

func TestDerive_PrioritySortIsStable(t *testing.T) {
	tasks := []task.Task{
		mk("l1", "l1", task.PriorityLow, false, t0),
		mk("h1", "h1", task.PriorityHigh, false, t0),
		mk("m1", "m1", task.PriorityMedium, false, t0),
		mk("h2", "h2", task.PriorityHigh, false, t0),
		mk("l2", "l2", task.PriorityLow, false, t0),
		mk("m2", "m2", task.PriorityMedium, false, t0),
	}

	v := task.Derive(tasks, task.Filter{Sort: task.SortPriority}, t0)
	assert.Equal(t, []string{"h1", "h2", "m1", "m2", "l1", "l2"}, ids(v.Visible))
}

func TestDerive_DateSortStableOnEqualTimestamps(t *testing.T) {
	tasks := []task.Task{
		mk("a", "a", task.PriorityLow, false, t0),
		mk("b", "b", task.PriorityLow, false, t0),
		mk("c", "c", task.PriorityLow, false, t0.Add(time.Second)),
	}

	v := task.Derive(tasks, task.Filter{}, t0)
	assert.Equal(t, []string{"c", "a", "b"}, ids(v.Visible))
}

func TestDerive_NameSortUsesCollation(t *testing.T) {
	tasks := []task.Task{
		mk("c", "cherry", task.PriorityLow, false, t0),
		mk("B", "Banana", task.PriorityLow, false, t0),
		mk("a", "apple", task.PriorityLow, false, t0),
		mk("e", "éclair", task.PriorityLow, false, t0),
	}

	v := task.Derive(tasks, task.Filter{Sort: task.SortName, Locale: language.English}, t0)
	assert.Equal(t, []string{"a", "B", "c", "e"}, ids(v.Visible))
}

func TestDerive_StatsOverUnfilteredCollection(t *testing.T) {
	now := time.Date(2026, 10, 16, 15, 0, 0, 0, time.UTC)
	tasks := []task.Task{
		{ID: "1", Title: "a", Priority: task.PriorityHigh, DueDate: date(2026, 10, 16), CreatedAt: t0},
		{ID: "2", Title: "b", Priority: task.PriorityHigh, Completed: true, DueDate: date(2026, 10, 16), CreatedAt: t0},
		{ID: "3", Title: "c", Priority: task.PriorityLow, DueDate: date(2026, 10, 17), CreatedAt: t0},
		{ID: "4", Title: "d", Priority: task.PriorityMedium, CreatedAt: t0},
	}

	v := task.Derive(tasks, task.Filter{Status: task.StatusCompleted, Search: "zzz"}, now)
	assert.Empty(t, v.Visible)
	assert.Equal(t, task.Stats{Total: 4, Completed: 1, Pending: 3, HighPriority: 1, DueToday: 1}, v.Stats)
}

func TestDerive_DoesNotMutateInput(t *testing.T) {
	tasks := []task.Task{
		{ID: "1", Title: "b", Priority: task.PriorityLow, DueDate: date(2026, 1, 1), CreatedAt: t0},
		{ID: "2", Title: "a", Priority: task.PriorityHigh, CreatedAt: t0.Add(time.Hour)},
	}
	snapshot := []task.Task{tasks[0], tasks[1]}
	snapshotDue := *tasks[0].DueDate

	v := task.Derive(tasks, task.Filter{Sort: task.SortName}, t0)
	v.Visible[1].DueDate.Day = 28
	v.Visible[0].Title = "changed"

	assert.Equal(t, snapshot[0].ID, tasks[0].ID)
	assert.Equal(t, snapshot[1].ID, tasks[1].ID)
	assert.Equal(t, "b", tasks[0].Title)
	assert.Equal(t, snapshotDue, *tasks[0].DueDate)
}

func TestDerive_Idempotent(t *testing.T) {
	tasks := randomTasks(rand.New(rand.NewSource(7)), 40)
	f := task.Filter{Status: task.StatusActive, Sort: task.SortPriority}

	first := task.Derive(tasks, f, t0)
	second := task.Derive(tasks, f, t0)
	assert.Equal(t, first, second)
}

// TestDerive_VisibleIsFilteredSubsequence checks over random collections that
// every visible record exists in the input exactly once, matches the filter,
// and that visible records keep the order of the unfiltered sort.
func TestDerive_VisibleIsFilteredSubsequence(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	statuses := []task.Status{task.StatusAll, task.StatusActive, task.StatusCompleted}
	sorts := []task.SortKey{task.SortDate, task.SortPriority, task.SortName}
	cats := []string{task.CategoryAll, "Work", "Health"}
	searches := []string{"", "a", "TASK"}

	for i := 0; i < 200; i++ {
		tasks := randomTasks(rng, rng.Intn(25))
		f := task.Filter{
			Status:   statuses[rng.Intn(len(statuses))],
			Sort:     sorts[rng.Intn(len(sorts))],
			Category: cats[rng.Intn(len(cats))],
			Search:   searches[rng.Intn(len(searches))],
		}

		v := task.Derive(tasks, f, t0)

		byID := make(map[string]task.Task, len(tasks))
		for _, tk := range tasks {
			byID[tk.ID] = tk
		}
		seen := make(map[string]bool)
		for _, got := range v.Visible {
			orig, ok := byID[got.ID]
			require.True(t, ok, "fabricated record %s", got.ID)
			require.False(t, seen[got.ID], "duplicated record %s", got.ID)
			seen[got.ID] = true
			assert.Equal(t, orig, got)

			if f.Status == task.StatusActive {
				assert.False(t, got.Completed)
			}
			if f.Status == task.StatusCompleted {
				assert.True(t, got.Completed)
			}
			if f.Category != task.CategoryAll {
				assert.Equal(t, f.Category, got.Category)
			}
		}

		// Re-deriving with no filter but the same sort must contain the
		// visible records in the same relative order.
		all := task.Derive(tasks, task.Filter{Sort: f.Sort}, t0).Visible
		j := 0
		for _, tk := range all {
			if j < len(v.Visible) && tk.ID == v.Visible[j].ID {
				j++
			}
		}
		assert.Equal(t, len(v.Visible), j, "visible order disagrees with unfiltered order")
	}
}

func randomTasks(rng *rand.Rand, n int) []task.Task {
	prios := []task.Priority{task.PriorityLow, task.PriorityMedium, task.PriorityHigh}
	cats := []string{"", "Work", "Health", "Other"}
	words := []string{"task", "alpha", "beta", "Gamma", "delta"}

	out := make([]task.Task, n)
	for i := range out {
		out[i] = task.Task{
			ID:        string(rune('A'+i%26)) + string(rune('a'+i/26)),
			Title:     words[rng.Intn(len(words))] + " " + words[rng.Intn(len(words))],
			Priority:  prios[rng.Intn(len(prios))],
			Category:  cats[rng.Intn(len(cats))],
			Completed: rng.Intn(2) == 0,
			CreatedAt: t0.Add(time.Duration(rng.Intn(5)) * time.Hour),
		}
	}
	return out
}

func TestUpcoming(t *testing.T) {
	tasks := []task.Task{
		{ID: "late", Title: "late", DueDate: date(2026, 12, 1)},
		{ID: "none", Title: "none"},
		{ID: "done", Title: "done", Completed: true, DueDate: date(2026, 10, 1)},
		{ID: "soon", Title: "soon", DueDate: date(2026, 10, 17)},
		{ID: "mid1", Title: "mid1", DueDate: date(2026, 11, 1)},
		{ID: "mid2", Title: "mid2", DueDate: date(2026, 11, 1)},
		{ID: "next", Title: "next", DueDate: date(2026, 10, 18)},
	}

	assert.Equal(t, []string{"soon", "next", "mid1", "mid2"}, ids(task.Upcoming(tasks, 0)))
	assert.Equal(t, []string{"soon", "next"}, ids(task.Upcoming(tasks, 2)))
	assert.Empty(t, task.Upcoming(nil, 0))
}

func TestParseHelpers(t *testing.T) {
	s, err := task.ParseStatus("Active")
	require.NoError(t, err)
	assert.Equal(t, task.StatusActive, s)
	_, err = task.ParseStatus("open")
	assert.Error(t, err)

	k, err := task.ParseSort("")
	require.NoError(t, err)
	assert.Equal(t, task.SortDate, k)
	_, err = task.ParseSort("size")
	assert.Error(t, err)

	p, err := task.ParsePriority("HIGH")
	require.NoError(t, err)
	assert.Equal(t, task.PriorityHigh, p)
	_, err = task.ParsePriority("urgent")
	assert.Error(t, err)
}

func TestDate(t *testing.T) {
	d, err := task.ParseDate("2026-03-05")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-05", d.String())

	d, err = task.ParseDate("2026-03-05T23:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, task.Date{Year: 2026, Month: 3, Day: 5}, d)

	_, err = task.ParseDate("05/03/2026")
	assert.Error(t, err)

	assert.Equal(t, -1, date(2026, 1, 1).Compare(*date(2026, 1, 2)))
	assert.Equal(t, 1, date(2027, 1, 1).Compare(*date(2026, 12, 31)))
	assert.Equal(t, 0, date(2026, 1, 1).Compare(*date(2026, 1, 1)))
}
