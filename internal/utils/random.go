package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mozillazg/go-pinyin"
	"golang.org/x/crypto/bcrypt"

	"github.com/mingya-dental/clinic-manager/backend/internal/domain"
	"github.com/mingya-dental/clinic-manager/backend/internal/scheduling"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

// GenerateRandomDentist 生成一个随机的牙医账号，用于填充演示数据
func GenerateRandomDentist(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         domain.RoleDentist,
	}

	return user, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = letters[rand.Intn(len(letters))]
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

// 用 Fisher-Yates 洗牌算法从一周的所有格子中抽取一个随机子集
func randomWeekSlots(weekStart time.Time) []scheduling.Slot {
	slots := make([]scheduling.Slot, 0, 7*len(domain.ShiftKinds))
	for day := 0; day < 7; day++ {
		for _, shift := range domain.ShiftKinds {
			slots = append(slots, scheduling.Slot{
				Date:  weekStart.AddDate(0, 0, day),
				Shift: shift,
			})
		}
	}

	for i := len(slots) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		slots[i], slots[j] = slots[j], slots[i]
	}

	n := rand.Intn(len(slots)) + 1
	return slots[:n]
}

// GenerateRandomSlotRequests 为某一周生成一批互不重复的随机排班申请
func GenerateRandomSlotRequests(weekStart time.Time) []scheduling.SlotRequest {
	slots := randomWeekSlots(weekStart)

	reqs := make([]scheduling.SlotRequest, 0, len(slots))
	for _, slot := range slots {
		req := scheduling.SlotRequest{
			Date:  slot.Date,
			Shift: slot.Shift,
		}
		if rand.Intn(3) == 0 {
			req.Note = "备注" + GenerateRandomID(3, 3)
		}
		reqs = append(reqs, req)
	}

	return reqs
}
