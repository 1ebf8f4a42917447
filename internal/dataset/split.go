package dataset

import (
	"fmt"
	"math"
	"math/rand"
)

// 默认切分参数
const (
	DefaultTestSize    = 0.2
	DefaultRandomState = 42
)

// SplitIndices 生成训练/测试行号
// 测试集行数为 ceil(testSize*n)，两侧都不能为空；同一 seed 结果恒定
func SplitIndices(n int, testSize float64, seed int64) (train, test []int, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("test size must be in (0, 1), got %v", testSize)
	}
	nTest := int(math.Ceil(testSize * float64(n)))
	nTrain := n - nTest
	if nTest < 1 || nTrain < 1 {
		return nil, nil, fmt.Errorf("with n_samples=%d and test_size=%v the resulting train or test set would be empty", n, testSize)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	test = append([]int(nil), perm[:nTest]...)
	train = append([]int(nil), perm[nTest:]...)
	return train, test, nil
}

// TrainTestSplit 将数据集随机切分为训练集与测试集
func TrainTestSplit(d *Dataset, testSize float64, seed int64) (train, test *Dataset, err error) {
	trainIdx, testIdx, err := SplitIndices(d.Nrow(), testSize, seed)
	if err != nil {
		return nil, nil, err
	}

	if train, err = d.Subset(trainIdx); err != nil {
		return nil, nil, err
	}
	if test, err = d.Subset(testIdx); err != nil {
		return nil, nil, err
	}
	return train, test, nil
}
