package s3

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/smithy-go/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// getDefaultAwsLogMode logs request bodies and signing only at debug level.
func getDefaultAwsLogMode(lgr *zap.Logger) aws.ClientLogMode {
	clientLogMode := aws.LogRetries
	if lgr.Level() == zapcore.DebugLevel {
		clientLogMode |= aws.LogRequest |
			aws.LogResponse |
			aws.LogDeprecatedUsage |
			aws.LogSigning
	}
	return clientLogMode
}

func getDefaultAwsLoggerFunc(lgr *zap.Logger) logging.LoggerFunc {
	sugar := lgr.Named("s3").Sugar()
	return func(classification logging.Classification, format string, v ...interface{}) {
		switch classification {
		case logging.Debug:
			sugar.Debugf(format, v...)
		case logging.Warn:
			sugar.Warnf(format, v...)
		}
	}
}
