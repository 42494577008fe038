package service

import (
	"context"
	"sync"

	"github.com/SergeiKhy/campaign-tracker/internal/mailer"
	"github.com/SergeiKhy/campaign-tracker/internal/models"
	"go.uber.org/zap"
)

// Константы worker pool отправки
const (
	defaultSenderWorkers = 3 // Количество воркеров доставки
)

// SenderPool рассылает письма кампании через фиксированный пул воркеров.
// Каждый получатель обрабатывается независимо: сбой одной доставки не
// прерывает остальные.
type SenderPool struct {
	mailer      mailer.Mailer
	logger      *zap.Logger
	workerCount int
}

// NewSenderPool создаёт новый пул отправки
func NewSenderPool(m mailer.Mailer, logger *zap.Logger) *SenderPool {
	return &SenderPool{
		mailer:      m,
		logger:      logger,
		workerCount: defaultSenderWorkers,
	}
}

type sendJob struct {
	index int
	msg   *mailer.Message
}

// SendAll доставляет по одному письму каждому получателю и возвращает
// результаты в исходном порядке получателей
func (p *SenderPool) SendAll(ctx context.Context, msgs []*mailer.Message) []models.DeliveryResult {
	results := make([]models.DeliveryResult, len(msgs))
	jobs := make(chan sendJob)

	var wg sync.WaitGroup
	for i := 0; i < p.workerCount; i++ {
		wg.Add(1)
		go p.worker(ctx, i, jobs, results, &wg)
	}

	for i, msg := range msgs {
		jobs <- sendJob{index: i, msg: msg}
	}
	close(jobs)

	wg.Wait()
	return results
}

// worker доставляет письма из канала задач
func (p *SenderPool) worker(ctx context.Context, id int, jobs <-chan sendJob, results []models.DeliveryResult, wg *sync.WaitGroup) {
	defer wg.Done()

	p.logger.Debug("Воркер отправки запущен", zap.Int("id", id))

	for job := range jobs {
		messageID, err := p.mailer.Send(ctx, job.msg)
		if err != nil {
			p.logger.Warn("Не удалось доставить письмо",
				zap.String("email", job.msg.To),
				zap.Error(err),
			)
			results[job.index] = models.DeliveryResult{
				Email:  job.msg.To,
				Status: "failed",
				Error:  err.Error(),
			}
			continue
		}

		p.logger.Debug("Письмо доставлено",
			zap.String("email", job.msg.To),
			zap.String("message_id", messageID),
		)
		results[job.index] = models.DeliveryResult{
			Email:     job.msg.To,
			Status:    "success",
			MessageID: messageID,
		}
	}
}
