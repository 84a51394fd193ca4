package seed

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/mingya-dental/clinic-manager/backend/internal/config"
	"github.com/mingya-dental/clinic-manager/backend/internal/domain"
	"github.com/mingya-dental/clinic-manager/backend/internal/repository"
	"github.com/mingya-dental/clinic-manager/backend/internal/scheduling"
	"github.com/mingya-dental/clinic-manager/backend/internal/utils"
)

// SeedDemoData 生成一套可以直接演示的数据：
// 若干牙医账号、本周和下周的排班申请，以及对其中一部分申请的随机审批结果
func SeedDemoData(cfg *config.Config, repo *repository.Repository, dentistNum int) {
	scheduler := scheduling.NewService(repo)
	ctx := context.Background()

	dentists := make([]*domain.User, 0, dentistNum)
	for i := 0; i < dentistNum; i++ {
		dentist, err := utils.GenerateRandomDentist(cfg.Seed.User.Password, cfg.Email.UserDomain)
		if err != nil {
			slog.Error("无法生成随机牙医", slog.String("error", err.Error()))
			continue
		}

		if err := repo.CreateUser(dentist); err != nil {
			slog.Error("无法插入牙医", slog.String("error", err.Error()))
			continue
		}

		dentists = append(dentists, dentist)
	}

	slog.Info("插入牙医成功", slog.Int("count", len(dentists)))

	// 为每位牙医提交本周和下周的随机排班申请，本周已经过去的日期要先剔除
	window := scheduling.Window(time.Now(), 0)
	created := 0

	for _, dentist := range dentists {
		for offset := 0; offset <= 1; offset++ {
			weekStart := window.Start.AddDate(0, 0, offset*7)

			reqs := make([]scheduling.SlotRequest, 0)
			for _, req := range utils.GenerateRandomSlotRequests(weekStart) {
				if window.IsPast(req.Date) {
					continue
				}
				reqs = append(reqs, req)
			}
			if len(reqs) == 0 {
				continue
			}

			schedules, err := scheduler.RegisterSlots(ctx, dentist.ID, reqs)
			if err != nil {
				slog.Error("无法插入排班申请", slog.String("error", err.Error()))
				continue
			}

			created += len(schedules)

			// 随机审批其中一部分，剩下的保持待审批
			for _, schedule := range schedules {
				switch rand.Intn(3) {
				case 0:
					if _, err := scheduler.Decide(ctx, []int64{schedule.ID}, scheduling.ActionApprove); err != nil {
						slog.Error("无法通过排班申请", slog.String("error", err.Error()))
					}
				case 1:
					if _, err := scheduler.Decide(ctx, []int64{schedule.ID}, scheduling.ActionReject); err != nil {
						slog.Error("无法驳回排班申请", slog.String("error", err.Error()))
					}
				}
			}
		}
	}

	slog.Info("插入排班申请成功", slog.Int("count", created))
}
