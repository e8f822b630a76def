package goroutine

import (
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/ekuznetsov/campus-market-backend/internal/logger"
)

// SafeGo запускает горутину с обработкой panic. Используется для фоновых
// задач вроде очистки файлов объявления после коммита транзакции.
func SafeGo(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				if logger.Log != nil {
					logger.Log.WithFields(logrus.Fields{
						"panic": r,
						"stack": string(debug.Stack()),
					}).Error("panic in background goroutine")
				}
			}
		}()
		fn()
	}()
}
