package benchmark

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/voxo-cms/internal/content"
	"github.com/voxo-cms/internal/mocks"
	"github.com/voxo-cms/internal/models"
	"github.com/voxo-cms/internal/validation"
)

// sampleArticle is a typical model reply for the write stage
func sampleArticle(paragraphs int) string {
	var b strings.Builder
	b.WriteString("제목: 여름의 끝에서 듣는 Ditto\n")
	b.WriteString("서두: 겨울 노래가 여름에 다시 들리는 이유\n\n")
	for i := 0; i < paragraphs; i++ {
		b.WriteString("Ditto는 반복되는 베이스 라인과 흐릿한 보컬로 기억의 질감을 만든다. <b>& 그 질감은</b> 오래 남는다.\n\n")
	}
	return b.String()
}

// BenchmarkListPosts benchmarks a published listing page over 1000 posts
func BenchmarkListPosts(b *testing.B) {
	repo := mocks.NewMockPostRepository()
	now := time.Now()
	for i := 0; i < 1000; i++ {
		repo.Create(context.Background(), &models.Post{
			ID:          fmt.Sprintf("550e8400-e29b-41d4-a716-%012d", i),
			Title:       fmt.Sprintf("Review %d", i),
			Slug:        fmt.Sprintf("review-%d", i),
			IsPublished: i%2 == 0,
			CreatedAt:   now.Add(time.Duration(i) * time.Minute),
		})
	}
	filter := models.PostFilter{PublishedOnly: true, Limit: 10, Offset: 20}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		repo.List(context.Background(), filter)
	}
}

// BenchmarkValidatePost benchmarks back office post validation
func BenchmarkValidatePost(b *testing.B) {
	validator := validation.NewValidator()
	rating := 8.5
	post := &models.PostInput{
		Title:      "NewJeans - Ditto 리뷰",
		Slug:       "newjeans-ditto-review",
		CategoryID: "550e8400-e29b-41d4-a716-446655440000",
		Rating:     &rating,
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		validator.ValidatePost(post)
	}
}

// BenchmarkParseArticle benchmarks title and intro extraction
func BenchmarkParseArticle(b *testing.B) {
	text := sampleArticle(12)

	b.ResetTimer()
	b.ReportAllocs()
	b.SetBytes(int64(len(text)))

	for i := 0; i < b.N; i++ {
		content.ParseArticle(text, "NewJeans", "Ditto")
	}
}

// BenchmarkParagraphsToHTML benchmarks body conversion to escaped paragraphs
func BenchmarkParagraphsToHTML(b *testing.B) {
	body := content.ParseArticle(sampleArticle(12), "NewJeans", "Ditto").Body

	b.ResetTimer()
	b.ReportAllocs()
	b.SetBytes(int64(len(body)))

	for i := 0; i < b.N; i++ {
		content.ParagraphsToHTML(body)
	}
}

// BenchmarkPlainText benchmarks excerpt extraction from stored HTML
func BenchmarkPlainText(b *testing.B) {
	html := content.ParagraphsToHTML(content.ParseArticle(sampleArticle(12), "NewJeans", "Ditto").Body)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		content.PlainText(html)
	}
}

// BenchmarkSlugify benchmarks slug generation for mixed script titles
func BenchmarkSlugify(b *testing.B) {
	titles := []string{"NewJeans - Ditto Review", "Beyoncé: Renaissance", "뉴진스 Supernatural 리뷰"}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		content.Slugify(titles[i%len(titles)])
	}
}

// BenchmarkWorkerPoolSemaphore benchmarks the broadcast worker semaphore
func BenchmarkWorkerPoolSemaphore(b *testing.B) {
	sem := make(chan struct{}, 32)

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			sem <- struct{}{}
			<-sem
		}
	})
}
