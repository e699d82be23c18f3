package corpus

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xaenox/school-bot/internal/models"
)

var schoolPairs = []models.QAPair{
	{Question: "전학은 어떻게 하나요?", Answer: "행정실에 전학 서류를 제출해 주세요.", AdditionalAnswer: "전입 학교에서 요청하는 서류도 확인해 주세요."},
	{Question: "방과후 프로그램은 어떻게 신청하나요?", Answer: "학기 초 가정통신문으로 신청합니다."},
	{Question: "도서관은 몇시에 여나요?", Answer: "도서관은 오전 8시 40분부터 엽니다."},
	{Question: "학교 규칙은 어디서 볼 수 있나요?", Answer: "학교 홈페이지 학교규칙 게시판에서 볼 수 있습니다."},
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"전학은 어떻게 하나요?", []string{"전학", "학은", "어떻", "떻게", "하나", "나요"}},
		{"급식", []string{"급식"}},
		{"반 배정", []string{"배정"}},
		{"School Bus 3", []string{"school", "bus"}},
		{"3학년 2반", []string{"학년"}},
		{"covid19 안내", []string{"covid19", "안내"}},
		{"?!", nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.in))
		})
	}
}

func TestFeatures_IncludesAdjacentPairs(t *testing.T) {
	assert.Equal(t,
		[]string{"school", "bus", "stop", "school bus", "bus stop"},
		Features("school bus stop"))
	assert.Nil(t, Features(""))
}

func TestIndex_SimilarityMatchesRelatedQuestion(t *testing.T) {
	idx := New(schoolPairs, Options{})

	best, score := idx.MostSimilar(idx.Project("전학가고 싶은데"))

	require.Equal(t, 0, best)
	assert.GreaterOrEqual(t, score, 0.3)
	assert.LessOrEqual(t, score, 1.0)
}

func TestIndex_IdenticalQuestionScoresOne(t *testing.T) {
	idx := New(schoolPairs, Options{})

	best, score := idx.MostSimilar(idx.Project("도서관은 몇시에 여나요?"))

	assert.Equal(t, 2, best)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestIndex_NoSharedVocabularyScoresZero(t *testing.T) {
	idx := New(schoolPairs, Options{})

	v := idx.Project("날씨 어때")
	assert.Empty(t, v)

	best, score := idx.MostSimilar(v)
	assert.Equal(t, -1, best)
	assert.Zero(t, score)
}

func TestIndex_EmptyCorpusNeverMatches(t *testing.T) {
	idx := Empty()

	assert.Zero(t, idx.Len())
	assert.Zero(t, idx.VocabularySize())

	best, score := idx.MostSimilar(idx.Project("전학은 어떻게 하나요?"))
	assert.Equal(t, -1, best)
	assert.Zero(t, score)
}

func TestIndex_SkipsBlankPairs(t *testing.T) {
	idx := New([]models.QAPair{
		{Question: "  ", Answer: "orphan answer"},
		{Question: "no answer", Answer: ""},
		{Question: "valid question", Answer: "valid answer"},
	}, Options{})

	require.Equal(t, 1, idx.Len())
	assert.Equal(t, "valid question", idx.Pair(0).Question)
	assert.Equal(t, "valid question", idx.NormalizedQuestion(0))
}

func TestIndex_VocabularyCap(t *testing.T) {
	pairs := make([]models.QAPair, 0, 50)
	for i := 0; i < 50; i++ {
		pairs = append(pairs, models.QAPair{
			Question: fmt.Sprintf("common term%02d", i),
			Answer:   "a",
		})
	}

	idx := New(pairs, Options{MaxFeatures: 10})

	assert.Equal(t, 10, idx.VocabularySize())
	// "common" appears in every question and survives the cap.
	assert.NotEmpty(t, idx.Project("common"))
}

func TestVector_Dot(t *testing.T) {
	a := Vector{0: 0.6, 1: 0.8}
	b := Vector{1: 1}

	assert.InDelta(t, 0.8, a.Dot(b), 1e-9)
	assert.InDelta(t, 0.8, b.Dot(a), 1e-9)
	assert.Zero(t, a.Dot(Vector{}))
}

type fakeSource struct {
	mu    sync.Mutex
	pairs []models.QAPair
	err   error
	calls atomic.Int32
}

func (s *fakeSource) AllQAPairs(ctx context.Context) ([]models.QAPair, error) {
	s.calls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]models.QAPair(nil), s.pairs...), nil
}

func (s *fakeSource) set(pairs []models.QAPair, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pairs, s.err = pairs, err
}

func TestHolder_ReloadSwapsIndex(t *testing.T) {
	src := &fakeSource{pairs: schoolPairs[:1]}
	h := NewHolder(src, Options{}, zap.NewNop(), nil)

	assert.Zero(t, h.Current().Len())

	require.NoError(t, h.Reload(context.Background()))
	first := h.Current()
	assert.Equal(t, 1, first.Len())

	src.set(schoolPairs, nil)
	require.NoError(t, h.Reload(context.Background()))
	assert.Equal(t, len(schoolPairs), h.Current().Len())

	// The previously published index is untouched by the reload.
	assert.Equal(t, 1, first.Len())
}

func TestHolder_FailedReloadKeepsPreviousIndex(t *testing.T) {
	src := &fakeSource{pairs: schoolPairs}
	h := NewHolder(src, Options{}, zap.NewNop(), nil)
	require.NoError(t, h.Reload(context.Background()))

	src.set(nil, errors.New("database is locked"))
	err := h.Reload(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
	assert.Equal(t, len(schoolPairs), h.Current().Len())
}

func TestHolder_ConcurrentReadersDuringReload(t *testing.T) {
	src := &fakeSource{pairs: schoolPairs}
	h := NewHolder(src, Options{}, zap.NewNop(), nil)
	require.NoError(t, h.Reload(context.Background()))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				idx := h.Current()
				best, _ := idx.MostSimilar(idx.Project("도서관 몇시"))
				assert.Less(t, best, idx.Len())
			}
		}()
	}
	for i := 0; i < 10; i++ {
		require.NoError(t, h.Reload(context.Background()))
	}
	wg.Wait()
}

func TestWatcher_ReloadsOnFileChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "school_data.db")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	src := &fakeSource{pairs: schoolPairs}
	h := NewHolder(src, Options{}, zap.NewNop(), nil)
	w := NewWatcher(h, path, 20*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Keep touching the file until the watcher has picked it up; the
	// watch is registered asynchronously.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte(time.Now().String()), 0o644)
		return h.Current().Len() == len(schoolPairs)
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	w := NewWatcher(nil, "/data/school_data.db", 0, zap.NewNop())

	assert.True(t, w.relevant(fsnotify.Event{Name: "/data/school_data.db-journal", Op: fsnotify.Write}))
	assert.True(t, w.relevant(fsnotify.Event{Name: "/data/school_data.db", Op: fsnotify.Rename}))
	assert.False(t, w.relevant(fsnotify.Event{Name: "/data/school_data.db", Op: fsnotify.Chmod}))
	assert.False(t, w.relevant(fsnotify.Event{Name: "/data/notes.txt", Op: fsnotify.Write}))
	assert.Equal(t, defaultDebounce, w.debounce)
}
