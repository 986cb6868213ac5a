package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"PortfolioCMS/internal/log"
)

// CredentialStore 单管理员凭据；密码哈希在进程内只派生一次
type CredentialStore struct {
	username  string
	password  string
	cost      int
	generated string

	once sync.Once
	hash []byte
	err  error
}

// NewCredentialStore 创建凭据存储
//
// passwordHash 优先于明文 password；两者都为空时生成随机密码，仅在本进程内有效
func NewCredentialStore(username, password, passwordHash string, cost int) *CredentialStore {
	c := &CredentialStore{
		username: username,
		password: password,
		cost:     cost,
	}
	if passwordHash != "" {
		c.hash = []byte(passwordHash)
		c.password = ""
	} else if password == "" {
		c.generated = generateRandomPassword(16)
		c.password = c.generated
	}
	return c
}

// Username 返回管理员用户名
func (c *CredentialStore) Username() string { return c.username }

// GeneratedPassword 启动时生成的随机密码，未生成时为空
func (c *CredentialStore) GeneratedPassword() string { return c.generated }

// Initialize 派生（或校验）密码哈希，并发调用安全，只生效一次
func (c *CredentialStore) Initialize() error {
	c.once.Do(func() {
		if c.hash != nil {
			if _, err := bcrypt.Cost(c.hash); err != nil {
				c.err = fmt.Errorf("invalid admin password hash: %w", err)
			}
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(c.password), c.cost)
		if err != nil {
			c.err = fmt.Errorf("hash admin password: %w", err)
			return
		}
		c.hash = hash
		c.password = ""
		log.Debugf(log.Fields{"username": c.username, "cost": c.cost}, "管理员密码哈希已生成")
	})
	return c.err
}

// Verify 校验用户名与密码；两项检查总是都执行，用户名使用常量时间比较
func (c *CredentialStore) Verify(username, password string) (bool, error) {
	if err := c.Initialize(); err != nil {
		return false, err
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.username)) == 1

	err := bcrypt.CompareHashAndPassword(c.hash, []byte(password))
	switch {
	case err == nil:
		return userOK, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}

// HashPassword 生成 bcrypt 哈希，供 hashpwd 子命令使用
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// PrintBanner 输出首次启动生成的管理员账户信息
func PrintBanner(w io.Writer, username, password string) {
	fmt.Fprintln(w, "================================")
	fmt.Fprintln(w, "🚀 Portfolio CMS 已启动，未配置管理员密码")
	fmt.Fprintln(w, "================================")
	fmt.Fprintln(w, "管理员账户信息：")
	fmt.Fprintln(w, "用户名:", username)
	fmt.Fprintln(w, "密码:", password)
	fmt.Fprintln(w, "================================")
	fmt.Fprintln(w, "⚠️  该密码仅在本次进程内有效，请设置 ADMIN_PASSWORD_HASH！")
	fmt.Fprintln(w, "================================")
}

// generateRandomPassword 生成随机密码，演示环境返回固定密码
func generateRandomPassword(length int) string {
	if os.Getenv("DEMO_STATUS") == "true" {
		return "admin123456"
	}

	charset := "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*"
	result := make([]byte, length)
	for i := range result {
		num, _ := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		result[i] = charset[num.Int64()]
	}
	return string(result)
}
