package common_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"devscore/internal/common"
)

// ExampleDo 第二次调用成功
func ExampleDo() {
	attempts := 0
	err := common.Do(context.Background(), func() error {
		attempts++
		if attempts < 2 {
			return errors.New("temporary")
		}
		return nil
	}, common.WithInitialDelay(time.Millisecond))

	fmt.Println(attempts, err)
	// Output: 2 <nil>
}

// ExamplePermanent 永久错误不再重试
func ExamplePermanent() {
	attempts := 0
	err := common.Do(context.Background(), func() error {
		attempts++
		return common.Permanent(errors.New("404 not found"))
	}, common.WithMaxRetries(5), common.WithInitialDelay(time.Millisecond))

	fmt.Println(attempts, err)
	// Output: 1 404 not found
}
